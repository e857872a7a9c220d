// Package discovery builds a schema snapshot of the source database: every
// selected base table with its estimated size and its SQLite translation.
package discovery

import (
	"context"
	"fmt"

	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/schema"
	"github.com/my2lite/my2lite/internal/selection"
	"github.com/my2lite/my2lite/internal/source"
)

// Discoverer extracts table metadata through a connected source.Reader.
type Discoverer struct {
	Source     source.Reader
	Translator *ddl.Translator
	Include    []string
	Exclude    []string
}

// Discover lists the base tables and translates each definition. A table
// whose definition cannot be read or translated is kept with status failed.
func (d *Discoverer) Discover(ctx context.Context, host, database string) (*schema.Schema, error) {
	translator := d.Translator
	if translator == nil {
		translator = ddl.NewTranslator(nil)
	}

	tables, err := d.Source.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	tables = selection.Apply(tables, d.Include, d.Exclude)

	s := &schema.Schema{Host: host, Database: database}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		s.Tables = append(s.Tables, describe(ctx, d.Source, translator, t))
	}
	return s, nil
}

func describe(ctx context.Context, src source.Reader, translator *ddl.Translator, t source.TableInfo) schema.Table {
	table := schema.Table{
		Name:      t.Name,
		RowCount:  t.RowCount,
		SizeBytes: t.SizeBytes,
		Status:    string(ddl.StatusFailed),
	}

	createSQL, err := src.ShowCreateTable(ctx, t.Name)
	if err != nil {
		table.Warnings = []string{err.Error()}
		return table
	}

	res, err := translator.Translate(createSQL)
	table.Warnings = res.Warnings
	if err != nil {
		table.Warnings = append(table.Warnings, err.Error())
		return table
	}

	table.Status = string(res.Status)
	table.Definition = *res.Definition
	return table
}
