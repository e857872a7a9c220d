// Package ddl translates MySQL CREATE TABLE statements into SQLite's dialect.
package ddl

import (
	"errors"

	"github.com/my2lite/my2lite/internal/schema"
	"github.com/my2lite/my2lite/internal/typemap"
)

// Status classifies a translation outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial" // translated, with warnings
	StatusFailed  Status = "failed"
)

// Result is the outcome of translating one statement.
type Result struct {
	Table      string
	SQL        string
	Definition *schema.TableDefinition
	Status     Status
	Warnings   []string
}

// Translator rewrites CREATE TABLE statements using a fixed type mapping.
type Translator struct {
	types *typemap.TypeMap
}

// NewTranslator returns a translator; a nil mapping selects the MySQL defaults.
func NewTranslator(tm *typemap.TypeMap) *Translator {
	if tm == nil {
		tm = typemap.New()
	}
	return &Translator{types: tm}
}

// Translate parses createSQL and renders the SQLite statement. On failure the
// returned Result has StatusFailed and the error is a *ParseError.
func (t *Translator) Translate(createSQL string) (*Result, error) {
	def, warnings, err := Parse(createSQL)
	if err != nil {
		res := &Result{Status: StatusFailed, Warnings: warnings}
		var pe *ParseError
		if errors.As(err, &pe) {
			res.Table = pe.Table
		}
		return res, err
	}

	sql, renderWarnings := Render(def, t.types)
	warnings = append(warnings, renderWarnings...)

	res := &Result{
		Table:      def.Name,
		SQL:        sql,
		Definition: def,
		Status:     StatusOK,
		Warnings:   warnings,
	}
	if len(warnings) > 0 {
		res.Status = StatusPartial
	}
	return res, nil
}
