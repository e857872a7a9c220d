// Package report renders the outcome of a migration run as JSON or text.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/my2lite/my2lite/internal/migration"
	"github.com/my2lite/my2lite/internal/validation"
)

// MigrationReport is the final migration report.
type MigrationReport struct {
	Version     string           `json:"version"`
	GeneratedAt time.Time        `json:"generated_at"`
	Source      SourceSummary    `json:"source"`
	Target      TargetSummary    `json:"target"`
	Migration   MigrationSummary `json:"migration"`
	Tables      []TableReport    `json:"tables"`
	NextSteps   []string         `json:"next_steps,omitempty"`
}

// SourceSummary describes the source database.
type SourceSummary struct {
	Host     string `json:"host"`
	Database string `json:"database"`
}

// TargetSummary describes the SQLite file.
type TargetSummary struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	UploadURI string `json:"upload_uri,omitempty"`
}

// MigrationSummary describes the migration execution.
type MigrationSummary struct {
	Status          string    `json:"status"` // completed, partial_failure, failed
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	TablesSucceeded int       `json:"tables_succeeded"`
	TablesFailed    int       `json:"tables_failed"`
	RowsCopied      int64     `json:"rows_copied"`
}

// TableReport is the outcome for one table.
type TableReport struct {
	Name          string                    `json:"name"`
	State         string                    `json:"state"`
	Translation   string                    `json:"translation"`
	Warnings      []string                  `json:"warnings,omitempty"`
	Rows          int64                     `json:"rows"`
	Pages         int                       `json:"pages"`
	DurationMS    int64                     `json:"duration_ms"`
	Error         string                    `json:"error,omitempty"`
	RowCountCheck *validation.RowCountCheck `json:"row_count_check,omitempty"`
}

// GenerateReport creates a MigrationReport from a run result.
func GenerateReport(sourceHost, sourceDB, targetPath string, result *migration.Result) *MigrationReport {
	r := &MigrationReport{
		Version:     "1",
		GeneratedAt: time.Now(),
		Source:      SourceSummary{Host: sourceHost, Database: sourceDB},
		Target:      TargetSummary{Path: targetPath},
	}
	if fi, err := os.Stat(targetPath); err == nil {
		r.Target.SizeBytes = fi.Size()
	}

	failed := len(result.Failed())
	r.Migration = MigrationSummary{
		Status:          overallStatus(len(result.Tables), failed),
		StartedAt:       result.StartedAt,
		CompletedAt:     result.CompletedAt,
		DurationSeconds: result.CompletedAt.Sub(result.StartedAt).Seconds(),
		TablesSucceeded: len(result.Tables) - failed,
		TablesFailed:    failed,
		RowsCopied:      result.TotalRows(),
	}

	var partial int
	for _, t := range result.Tables {
		tr := TableReport{
			Name:          t.Name,
			State:         t.State,
			Translation:   string(t.Translation),
			Warnings:      t.Warnings,
			Rows:          t.Rows,
			Pages:         t.Pages,
			DurationMS:    t.Duration.Milliseconds(),
			RowCountCheck: t.RowCount,
		}
		if t.Error != nil {
			tr.Error = t.Error.Error()
		}
		if len(t.Warnings) > 0 {
			partial++
		}
		r.Tables = append(r.Tables, tr)
	}

	if failed > 0 {
		r.NextSteps = append(r.NextSteps, fmt.Sprintf("Review the %d failed table(s) and re-run with --include to retry them", failed))
	}
	if partial > 0 {
		r.NextSteps = append(r.NextSteps, fmt.Sprintf("Check translation warnings on %d table(s); indexes and foreign keys are not migrated", partial))
	}
	return r
}

func overallStatus(total, failed int) string {
	switch {
	case failed == 0:
		return "completed"
	case failed < total:
		return "partial_failure"
	default:
		return "failed"
	}
}

// Marshal encodes the report as indented JSON.
func Marshal(report *MigrationReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

// WriteJSON writes the report as JSON.
func WriteJSON(report *MigrationReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(path string) (*MigrationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	r := &MigrationReport{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return r, nil
}

// WriteText writes the report as human-readable text.
func WriteText(report *MigrationReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, []byte(FormatText(report)), 0o644)
}

// FormatText renders the report as human-readable text.
func FormatText(report *MigrationReport) string {
	var b strings.Builder

	b.WriteString("=== my2lite Migration Report ===\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339)))

	b.WriteString("Source:\n")
	b.WriteString(fmt.Sprintf("  Host:     %s\n", report.Source.Host))
	b.WriteString(fmt.Sprintf("  Database: %s\n\n", report.Source.Database))

	b.WriteString("Target:\n")
	b.WriteString(fmt.Sprintf("  Path:   %s\n", report.Target.Path))
	b.WriteString(fmt.Sprintf("  Size:   %d bytes\n", report.Target.SizeBytes))
	if report.Target.UploadURI != "" {
		b.WriteString(fmt.Sprintf("  Upload: %s\n", report.Target.UploadURI))
	}
	b.WriteString("\n")

	m := report.Migration
	b.WriteString("Migration:\n")
	b.WriteString(fmt.Sprintf("  Status:   %s\n", m.Status))
	b.WriteString(fmt.Sprintf("  Tables:   %d succeeded, %d failed\n", m.TablesSucceeded, m.TablesFailed))
	b.WriteString(fmt.Sprintf("  Rows:     %d\n", m.RowsCopied))
	b.WriteString(fmt.Sprintf("  Duration: %.1fs\n\n", m.DurationSeconds))

	b.WriteString("Tables:\n")
	for _, t := range report.Tables {
		status := "OK"
		if t.State != "completed" {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("  [%s] %s: %d rows in %d pages\n", status, t.Name, t.Rows, t.Pages))
		for _, w := range t.Warnings {
			b.WriteString(fmt.Sprintf("      warning: %s\n", w))
		}
		if t.Error != "" {
			b.WriteString(fmt.Sprintf("      error: %s\n", t.Error))
		}
	}

	if len(report.NextSteps) > 0 {
		b.WriteString("\nNext Steps:\n")
		for i, s := range report.NextSteps {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}
	}

	return b.String()
}
