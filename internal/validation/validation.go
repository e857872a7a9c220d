// Package validation compares source and target row counts after a copy.
package validation

import (
	"context"
	"time"

	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/target"
)

// Result holds the outcome of post-migration validation.
type Result struct {
	Status      string        `json:"status"` // PASS, FAIL, PARTIAL
	Tables      []TableResult `json:"tables"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// TableResult holds validation results for a single table.
type TableResult struct {
	Name          string         `json:"name"`
	RowCountCheck *RowCountCheck `json:"row_count_check,omitempty"`
	Status        string         `json:"status"` // PASS, FAIL
}

// Validator performs post-migration validation.
type Validator struct {
	Source   source.Reader
	Target   target.Writer
	Callback func(table, checkType string, passed bool)
}

// ValidateRowCounts checks every named table and rolls the outcomes up.
func (v *Validator) ValidateRowCounts(ctx context.Context, tables []string) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	for _, name := range tables {
		tr := TableResult{Name: name, Status: "PASS"}
		rc, err := v.CheckRowCount(ctx, name)
		if err != nil {
			return nil, err
		}
		tr.RowCountCheck = rc
		if !rc.Match {
			tr.Status = "FAIL"
		}
		result.Tables = append(result.Tables, tr)
	}

	result.CompletedAt = time.Now()
	result.Status = computeOverallStatus(result.Tables)
	return result, nil
}

func (v *Validator) notify(table, checkType string, passed bool) {
	if v.Callback != nil {
		v.Callback(table, checkType, passed)
	}
}

func computeOverallStatus(tables []TableResult) string {
	if len(tables) == 0 {
		return "PASS"
	}
	failCount := 0
	for _, t := range tables {
		if t.Status == "FAIL" {
			failCount++
		}
	}
	if failCount == 0 {
		return "PASS"
	}
	if failCount == len(tables) {
		return "FAIL"
	}
	return "PARTIAL"
}
