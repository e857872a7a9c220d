// Package migration drives the per-table translate, copy and validate loop.
package migration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/my2lite/my2lite/internal/copier"
	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/selection"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/target"
	"github.com/my2lite/my2lite/internal/validation"
)

// Status represents the current migration state.
type Status struct {
	Phase       string        `yaml:"phase"` // "discovering", "running", "completed", "partial_failure", "failed"
	Overall     ProgressInfo  `yaml:"overall"`
	Tables      []TableStatus `yaml:"tables"`
	ElapsedTime time.Duration `yaml:"elapsed_time"`
	Errors      []string      `yaml:"errors,omitempty"`
}

// ProgressInfo tracks overall progress.
type ProgressInfo struct {
	RowsWritten     int64   `yaml:"rows_written"`
	RowsTotal       int64   `yaml:"rows_total"` // sum of estimates
	TablesDone      int     `yaml:"tables_done"`
	TablesTotal     int     `yaml:"tables_total"`
	PercentComplete float64 `yaml:"percent_complete"`
	RowsPerSecond   float64 `yaml:"rows_per_second"`
}

// TableStatus tracks per-table progress.
type TableStatus struct {
	Name            string  `yaml:"name"`
	State           string  `yaml:"state"` // "pending", "translating", "copying", "validating", "completed", "failed"
	RowsWritten     int64   `yaml:"rows_written"`
	RowsTotal       int64   `yaml:"rows_total"`
	PercentComplete float64 `yaml:"percent_complete"`
	Error           string  `yaml:"error,omitempty"`
}

// Clone returns a deep copy that stays stable while the run keeps updating s.
func (s *Status) Clone() *Status {
	c := *s
	c.Tables = append([]TableStatus(nil), s.Tables...)
	c.Errors = append([]string(nil), s.Errors...)
	return &c
}

// StatusCallback is called when migration status updates. The status is
// owned by the runner; callbacks that keep it must Clone it.
type StatusCallback func(status *Status)

// TableOutcome is the final result for one table.
type TableOutcome struct {
	Name        string
	State       string // "completed" or "failed"
	Translation ddl.Status
	Warnings    []string
	Rows        int64
	Pages       int
	Error       error
	Duration    time.Duration
	RowCount    *validation.RowCountCheck
}

// Result holds every table outcome in processing order.
type Result struct {
	Tables      []TableOutcome
	StartedAt   time.Time
	CompletedAt time.Time
}

// Failed returns the outcomes of tables that did not complete.
func (r *Result) Failed() []TableOutcome {
	var out []TableOutcome
	for _, t := range r.Tables {
		if t.State != "completed" {
			out = append(out, t)
		}
	}
	return out
}

// Succeeded returns the outcomes of tables that completed.
func (r *Result) Succeeded() []TableOutcome {
	var out []TableOutcome
	for _, t := range r.Tables {
		if t.State == "completed" {
			out = append(out, t)
		}
	}
	return out
}

// OK reports whether every table completed.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

// TotalRows returns the number of rows copied across all tables.
func (r *Result) TotalRows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Runner orchestrates the migration of every selected table.
type Runner struct {
	Source     source.Reader
	Target     target.Writer
	Translator *ddl.Translator
	PageSize   int
	Include    []string
	Exclude    []string
	Validate   bool
	Logger     *slog.Logger
}

// Run discovers the base tables and migrates them one at a time. Only a
// failure to list tables, or cancellation, is returned as an error; per-table
// failures are recorded in the Result and the loop moves on.
func (r *Runner) Run(ctx context.Context, callback StatusCallback) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	translator := r.Translator
	if translator == nil {
		translator = ddl.NewTranslator(nil)
	}

	result := &Result{StartedAt: time.Now()}
	mon := newMonitor(callback)
	mon.phase("discovering")

	discovered, err := r.Source.ListTables(ctx)
	if err != nil {
		mon.fail(err)
		return nil, fmt.Errorf("discovering tables: %w", err)
	}
	tables := selection.Apply(discovered, r.Include, r.Exclude)
	logger.Info("tables discovered", "found", len(discovered), "selected", len(tables))

	mon.start(tables)

	cp := copier.New(r.Source, r.Target, r.PageSize, logger)
	cp.OnProgress = func(p copier.Progress) { mon.progress(p.Table, p.Rows) }

	tr := &tableRun{
		src:        r.Source,
		translator: translator,
		copier:     cp,
		mon:        mon,
		logger:     logger,
	}
	if r.Validate {
		tr.validator = &validation.Validator{Source: r.Source, Target: r.Target}
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			result.CompletedAt = time.Now()
			mon.fail(err)
			return result, err
		}

		start := time.Now()
		outcome := tr.migrate(ctx, t.Name)
		outcome.Duration = time.Since(start)
		result.Tables = append(result.Tables, outcome)

		if outcome.Error != nil {
			logger.Error("table failed", "table", t.Name, "error", outcome.Error)
			mon.tableFailed(t.Name, outcome.Error)
			continue
		}
		logger.Info("table migrated", "table", t.Name, "rows", outcome.Rows, "pages", outcome.Pages,
			"duration", outcome.Duration)
		mon.tableDone(t.Name, outcome.Rows)
	}

	result.CompletedAt = time.Now()
	mon.finish()
	return result, nil
}

// tableRun holds the collaborators shared by every table of one run.
type tableRun struct {
	src        source.Reader
	translator *ddl.Translator
	copier     *copier.Copier
	validator  *validation.Validator
	mon        *monitor
	logger     *slog.Logger
}

func (tr *tableRun) migrate(ctx context.Context, table string) TableOutcome {
	outcome := TableOutcome{Name: table, State: "failed"}

	tr.mon.tableState(table, "translating")
	createSQL, err := tr.src.ShowCreateTable(ctx, table)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	res, err := tr.translator.Translate(createSQL)
	outcome.Translation = res.Status
	outcome.Warnings = res.Warnings
	if err != nil {
		outcome.Error = err
		return outcome
	}
	for _, w := range res.Warnings {
		tr.logger.Warn("translation warning", "table", table, "warning", w)
	}

	tr.mon.tableState(table, "copying")
	stats, err := tr.copier.Copy(ctx, res)
	outcome.Rows = stats.Rows
	outcome.Pages = stats.Pages
	if err != nil {
		outcome.Error = err
		return outcome
	}

	if tr.validator != nil {
		tr.mon.tableState(table, "validating")
		check, err := tr.validator.CheckRowCount(ctx, table)
		if err != nil {
			outcome.Error = err
			return outcome
		}
		outcome.RowCount = check
		if !check.Match {
			outcome.Error = fmt.Errorf("validating %s: %s", table, check.Message)
			return outcome
		}
	}

	outcome.State = "completed"
	return outcome
}
