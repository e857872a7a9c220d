package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/xwb1989/sqlparser"
)

// ErrNotReadOnly is returned by Query for anything but a single SELECT.
var ErrNotReadOnly = errors.New("only a single SELECT statement is allowed")

// CheckReadOnly parses query and accepts only SELECT and UNION statements.
func CheckReadOnly(query string) error {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return fmt.Errorf("parsing query: %w", err)
	}
	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect:
		return nil
	default:
		return fmt.Errorf("%w: got %T", ErrNotReadOnly, stmt)
	}
}

// ResultSet holds the rows of an ad-hoc query rendered as strings.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Query runs a read-only statement and returns every row.
func (s *Searcher) Query(ctx context.Context, query string) (*ResultSet, error) {
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
