package target

import (
	"context"
	"fmt"
)

// MockWriter is a test double for the Writer interface.
type MockWriter struct {
	RecreateErr error
	InsertErr   error
	// FailOnBatch makes the n-th InsertBatch call (1-based) return InsertErr.
	FailOnBatch int
	RowCountErr error
	VacuumErr   error
	DropErr     error

	// Track calls
	Created  map[string]string
	Inserted map[string][][]any
	Batches  int
	Dropped  []string
	Vacuumed bool
	Closed   bool
}

func (m *MockWriter) Recreate(_ context.Context, table, createSQL string) error {
	if m.RecreateErr != nil {
		return m.RecreateErr
	}
	if m.Created == nil {
		m.Created = make(map[string]string)
	}
	if m.Inserted == nil {
		m.Inserted = make(map[string][][]any)
	}
	m.Created[table] = createSQL
	m.Inserted[table] = nil
	return nil
}

func (m *MockWriter) InsertBatch(_ context.Context, table string, _ []string, rows [][]any) error {
	m.Batches++
	if m.InsertErr != nil && (m.FailOnBatch == 0 || m.FailOnBatch == m.Batches) {
		return m.InsertErr
	}
	if _, ok := m.Created[table]; !ok {
		return fmt.Errorf("no such table: %s", table)
	}
	m.Inserted[table] = append(m.Inserted[table], rows...)
	return nil
}

func (m *MockWriter) RowCount(_ context.Context, table string) (int64, error) {
	if m.RowCountErr != nil {
		return 0, m.RowCountErr
	}
	if _, ok := m.Created[table]; !ok {
		return 0, fmt.Errorf("no such table: %s", table)
	}
	return int64(len(m.Inserted[table])), nil
}

func (m *MockWriter) DropTables(_ context.Context, tables []string) error {
	if m.DropErr != nil {
		return m.DropErr
	}
	for _, t := range tables {
		delete(m.Created, t)
		delete(m.Inserted, t)
	}
	m.Dropped = append(m.Dropped, tables...)
	return nil
}

func (m *MockWriter) Vacuum(_ context.Context) error {
	if m.VacuumErr != nil {
		return m.VacuumErr
	}
	m.Vacuumed = true
	return nil
}

func (m *MockWriter) Close() error {
	m.Closed = true
	return nil
}
