package source

import (
	"context"
	"fmt"
)

// MockReader is a test double for the Reader interface.
type MockReader struct {
	ConnectErr error

	Tables      []TableInfo
	ListErr     error
	Creates     map[string]string // table -> SHOW CREATE TABLE text
	CreateErr   error
	Rows        map[string][][]any
	Columns     map[string][]string
	OpenErr     error
	FetchErrs   map[string]error // returned by the named table's cursor on the first fetch
	RowCounts   map[string]int64 // overrides len(Rows[table])
	RowCountErr error

	Connected bool
	Closed    bool
	Cursors   map[string]*MockCursor
}

func (m *MockReader) Connect(_ context.Context) error {
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Connected = true
	return nil
}

func (m *MockReader) ListTables(_ context.Context) ([]TableInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Tables, nil
}

func (m *MockReader) ShowCreateTable(_ context.Context, table string) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if s, ok := m.Creates[table]; ok {
		return s, nil
	}
	return "", fmt.Errorf("table %s doesn't exist", table)
}

func (m *MockReader) OpenCursor(_ context.Context, table string) (Cursor, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	c := &MockCursor{
		Cols:     m.Columns[table],
		Data:     m.Rows[table],
		Est:      int64(len(m.Rows[table])),
		FetchErr: m.FetchErrs[table],
	}
	if m.Cursors == nil {
		m.Cursors = make(map[string]*MockCursor)
	}
	m.Cursors[table] = c
	return c, nil
}

func (m *MockReader) RowCount(_ context.Context, table string) (int64, error) {
	if m.RowCountErr != nil {
		return 0, m.RowCountErr
	}
	if c, ok := m.RowCounts[table]; ok {
		return c, nil
	}
	if rows, ok := m.Rows[table]; ok {
		return int64(len(rows)), nil
	}
	return 0, fmt.Errorf("no row count configured for table %s", table)
}

func (m *MockReader) Close() error {
	m.Closed = true
	return nil
}

// MockCursor serves rows from memory and records how it was used.
type MockCursor struct {
	Cols     []string
	Data     [][]any
	Est      int64
	FetchErr error

	FetchCalls int
	Closed     bool
	pos        int
}

func (c *MockCursor) Columns() []string { return c.Cols }
func (c *MockCursor) Estimate() int64   { return c.Est }

func (c *MockCursor) Fetch(ctx context.Context, n int) ([][]any, error) {
	c.FetchCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	end := c.pos + n
	if end > len(c.Data) {
		end = len(c.Data)
	}
	page := c.Data[c.pos:end]
	c.pos = end
	return page, nil
}

func (c *MockCursor) Close() error {
	c.Closed = true
	return nil
}
