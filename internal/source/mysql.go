package source

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/my2lite/my2lite/internal/config"
)

// MySQLReader implements Reader for MySQL using go-sql-driver/mysql.
type MySQLReader struct {
	cfg    config.SourceConfig
	db     *sql.DB
	tunnel *Tunnel
}

// NewMySQLReader creates a new MySQL reader.
func NewMySQLReader(cfg config.SourceConfig) *MySQLReader {
	return &MySQLReader{cfg: cfg}
}

// DriverConfig builds the driver configuration for a source. Dates are left as
// text so they reach SQLite in MySQL's own format.
func DriverConfig(src config.SourceConfig) *mysql.Config {
	c := mysql.NewConfig()
	c.User = src.Username
	c.Passwd = src.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(src.Host, strconv.Itoa(src.Port))
	c.DBName = src.Database
	c.ParseTime = false
	if src.Charset != "" {
		c.Params = map[string]string{"charset": src.Charset}
	}
	return c
}

func (r *MySQLReader) Connect(ctx context.Context) error {
	dc := DriverConfig(r.cfg)

	if r.cfg.SSH != nil {
		tunnel, err := OpenTunnel(*r.cfg.SSH)
		if err != nil {
			return err
		}
		r.tunnel = tunnel
		dc.Net = tunnel.Network()
	}

	connector, err := mysql.NewConnector(dc)
	if err != nil {
		r.closeTunnel()
		return fmt.Errorf("configuring MySQL connection: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1) // tables are copied one at a time

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		r.closeTunnel()
		return fmt.Errorf("connecting to MySQL at %s: %w", dc.Addr, err)
	}
	r.db = db
	return nil
}

// DB exposes the underlying handle for ad hoc read queries.
func (r *MySQLReader) DB() *sql.DB {
	return r.db
}

func (r *MySQLReader) ListTables(ctx context.Context) ([]TableInfo, error) {
	const q = `SELECT TABLE_NAME, COALESCE(TABLE_ROWS, 0), COALESCE(DATA_LENGTH, 0) + COALESCE(INDEX_LENGTH, 0)
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := r.db.QueryContext(ctx, q, r.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.RowCount, &t.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}
	return tables, nil
}

func (r *MySQLReader) ShowCreateTable(ctx context.Context, table string) (string, error) {
	var name, createSQL string
	err := r.db.QueryRowContext(ctx, "SHOW CREATE TABLE "+QuoteIdent(table)).Scan(&name, &createSQL)
	if err != nil {
		return "", fmt.Errorf("reading definition of %s: %w", table, err)
	}
	return createSQL, nil
}

func (r *MySQLReader) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return count, nil
}

func (r *MySQLReader) estimate(ctx context.Context, table string) int64 {
	var n sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT TABLE_ROWS FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		r.cfg.Database, table).Scan(&n)
	if err != nil || !n.Valid {
		return 0
	}
	return n.Int64
}

func (r *MySQLReader) OpenCursor(ctx context.Context, table string) (Cursor, error) {
	// The estimate must be read before the stream takes the only connection.
	estimate := r.estimate(ctx, table)

	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+QuoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", table, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	return &rowsCursor{rows: rows, columns: cols, estimate: estimate}, nil
}

func (r *MySQLReader) Close() error {
	var err error
	if r.db != nil {
		err = r.db.Close()
	}
	r.closeTunnel()
	return err
}

func (r *MySQLReader) closeTunnel() {
	if r.tunnel != nil {
		r.tunnel.Close()
		r.tunnel = nil
	}
}

// rowsCursor pages through a *sql.Rows result.
type rowsCursor struct {
	rows     *sql.Rows
	columns  []string
	estimate int64
	done     bool
}

func (c *rowsCursor) Columns() []string { return c.columns }
func (c *rowsCursor) Estimate() int64   { return c.estimate }

func (c *rowsCursor) Fetch(ctx context.Context, n int) ([][]any, error) {
	if c.done {
		return nil, nil
	}
	page := make([][]any, 0, n)
	for len(page) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return nil, fmt.Errorf("reading rows: %w", err)
			}
			break
		}
		vals := make([]any, len(c.columns))
		ptrs := make([]any, len(c.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := c.rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		page = append(page, vals)
	}
	return page, nil
}

func (c *rowsCursor) Close() error {
	return c.rows.Close()
}

// QuoteIdent quotes a MySQL identifier with backticks.
func QuoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
