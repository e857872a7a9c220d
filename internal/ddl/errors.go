package ddl

import "fmt"

// ParseError reports a CREATE TABLE statement that could not be translated at all.
type ParseError struct {
	Table  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("parsing CREATE TABLE: %s", e.Reason)
	}
	return fmt.Sprintf("parsing CREATE TABLE %s: %s", e.Table, e.Reason)
}
