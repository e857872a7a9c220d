// Package copier replays the rows of a source table into a freshly created target table.
package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/target"
)

// DefaultPageSize is the number of rows fetched and committed at a time.
const DefaultPageSize = 1000

// ErrColumnCountMismatch means the source rows do not have the translated table's shape.
var ErrColumnCountMismatch = errors.New("column count mismatch")

// EncodingError reports a binary value that is not valid UTF-8.
type EncodingError struct {
	Table  string
	Column string
	Row    int64 // 1-based ordinal in the source stream
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("table %s, row %d, column %s: value is not valid UTF-8", e.Table, e.Row, e.Column)
}

// Progress is reported after every committed page.
type Progress struct {
	Table    string
	Rows     int64
	Pages    int
	Estimate int64
}

// Stats summarizes one table copy. It is returned alongside errors so callers
// can see how many rows were committed before the failure.
type Stats struct {
	Rows  int64
	Pages int
}

// Copier copies tables from a source reader into a target writer.
type Copier struct {
	src      source.Reader
	dst      target.Writer
	pageSize int
	logger   *slog.Logger

	// OnProgress, if set, is called after each committed page.
	OnProgress func(Progress)
}

// New creates a copier. A non-positive pageSize selects DefaultPageSize.
func New(src source.Reader, dst target.Writer, pageSize int, logger *slog.Logger) *Copier {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Copier{src: src, dst: dst, pageSize: pageSize, logger: logger}
}

// Copy replaces the target table's contents with a full copy of the source table.
// Pages committed before an error stay in the target.
func (c *Copier) Copy(ctx context.Context, res *ddl.Result) (Stats, error) {
	var stats Stats
	if res == nil || res.Definition == nil || res.Status == ddl.StatusFailed {
		return stats, fmt.Errorf("copying: no usable translation")
	}
	table := res.Table
	columns := res.Definition.ColumnNames()

	if err := c.dst.Recreate(ctx, table, res.SQL); err != nil {
		return stats, err
	}

	cur, err := c.src.OpenCursor(ctx, table)
	if err != nil {
		return stats, err
	}
	defer cur.Close()

	if n := len(cur.Columns()); n != len(columns) {
		return stats, fmt.Errorf("table %s: source has %d columns, definition has %d: %w",
			table, n, len(columns), ErrColumnCountMismatch)
	}

	estimate := cur.Estimate()
	c.logger.Debug("copying table", "table", table, "estimate", estimate, "page_size", c.pageSize)

	for {
		page, err := cur.Fetch(ctx, c.pageSize)
		if err != nil {
			return stats, fmt.Errorf("fetching from %s: %w", table, err)
		}
		if len(page) == 0 {
			break
		}

		if err := c.convertPage(table, columns, page, stats.Rows); err != nil {
			return stats, err
		}
		if err := c.dst.InsertBatch(ctx, table, columns, page); err != nil {
			return stats, err
		}

		stats.Rows += int64(len(page))
		stats.Pages++
		c.logger.Debug("page committed", "table", table, "pages", stats.Pages, "rows", stats.Rows)
		if c.OnProgress != nil {
			c.OnProgress(Progress{Table: table, Rows: stats.Rows, Pages: stats.Pages, Estimate: estimate})
		}

		if len(page) < c.pageSize {
			break
		}
	}
	return stats, nil
}

// convertPage turns every []byte value into a string in place.
func (c *Copier) convertPage(table string, columns []string, page [][]any, offset int64) error {
	for i, row := range page {
		if len(row) != len(columns) {
			return fmt.Errorf("table %s, row %d: %d values for %d columns: %w",
				table, offset+int64(i)+1, len(row), len(columns), ErrColumnCountMismatch)
		}
		for j, v := range row {
			b, ok := v.([]byte)
			if !ok {
				continue
			}
			if !utf8.Valid(b) {
				return &EncodingError{Table: table, Column: columns[j], Row: offset + int64(i) + 1}
			}
			row[j] = string(b)
		}
	}
	return nil
}
