// Package source reads tables, definitions and rows from the MySQL side of a migration.
package source

import "context"

// TableInfo describes one base table as reported by information_schema.
type TableInfo struct {
	Name      string
	RowCount  int64 // TABLE_ROWS estimate, may be inaccurate for InnoDB
	SizeBytes int64
}

// Reader provides read-only access to a source database.
type Reader interface {
	Connect(ctx context.Context) error
	ListTables(ctx context.Context) ([]TableInfo, error)
	ShowCreateTable(ctx context.Context, table string) (string, error)
	OpenCursor(ctx context.Context, table string) (Cursor, error)
	RowCount(ctx context.Context, table string) (int64, error)
	Close() error
}

// Cursor streams the rows of one table in declared column order.
type Cursor interface {
	Columns() []string
	// Estimate is the reported row count, used for progress display only.
	Estimate() int64
	// Fetch returns up to n rows. A short or empty page means the stream is exhausted.
	Fetch(ctx context.Context, n int) ([][]any, error)
	Close() error
}
