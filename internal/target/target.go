// Package target writes migrated tables into a SQLite database file.
package target

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Writer defines operations on the SQLite target.
type Writer interface {
	// Recreate drops the table if it exists and creates it from createSQL.
	Recreate(ctx context.Context, table, createSQL string) error
	// InsertBatch inserts rows in one transaction.
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error
	RowCount(ctx context.Context, table string) (int64, error)
	// DropTables drops each table that exists; missing tables are ignored.
	DropTables(ctx context.Context, tables []string) error
	Vacuum(ctx context.Context) error
	Close() error
}

// SQLiteWriter implements Writer using mattn/go-sqlite3.
type SQLiteWriter struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating target directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening SQLite database %s: %w", path, err)
	}
	return &SQLiteWriter{path: path, db: db}, nil
}

// Path returns the database file path.
func (w *SQLiteWriter) Path() string {
	return w.path
}

// DB exposes the underlying handle.
func (w *SQLiteWriter) DB() *sql.DB {
	return w.db
}

func (w *SQLiteWriter) Recreate(ctx context.Context, table, createSQL string) error {
	if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(table)); err != nil {
		return fmt.Errorf("dropping table %s: %w", table, err)
	}
	if _, err := w.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

func (w *SQLiteWriter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, InsertSQL(table, columns))
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d of %s has %d values for %d columns", i+1, table, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch into %s: %w", table, err)
	}
	return nil
}

func (w *SQLiteWriter) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return count, nil
}

func (w *SQLiteWriter) DropTables(ctx context.Context, tables []string) error {
	for _, t := range tables {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(t)); err != nil {
			return fmt.Errorf("dropping table %s: %w", t, err)
		}
	}
	return nil
}

// Vacuum rebuilds the database file to reclaim space left by dropped tables.
func (w *SQLiteWriter) Vacuum(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuuming %s: %w", w.path, err)
	}
	return nil
}

// Tables lists the user tables in the database.
func (w *SQLiteWriter) Tables(ctx context.Context) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// InsertSQL builds the positional insert statement for table.
func InsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", QuoteIdent(table), strings.Join(quoted, ", "), placeholders)
}

// QuoteIdent double-quotes a SQLite identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
