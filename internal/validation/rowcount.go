package validation

import (
	"context"
	"fmt"
)

// RowCountCheck holds the result of a row count comparison.
type RowCountCheck struct {
	SourceCount int64  `json:"source_count"`
	TargetCount int64  `json:"target_count"`
	Match       bool   `json:"match"`
	Message     string `json:"message,omitempty"`
}

// CheckRowCount compares the exact source row count against the target table.
func (v *Validator) CheckRowCount(ctx context.Context, table string) (*RowCountCheck, error) {
	sourceCount, err := v.Source.RowCount(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("counting source rows for %s: %w", table, err)
	}

	targetCount, err := v.Target.RowCount(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("counting target rows for %s: %w", table, err)
	}

	check := &RowCountCheck{
		SourceCount: sourceCount,
		TargetCount: targetCount,
		Match:       sourceCount == targetCount,
	}

	if !check.Match {
		check.Message = fmt.Sprintf("count mismatch: source=%d, target=%d (diff=%d)",
			sourceCount, targetCount, sourceCount-targetCount)
	}

	v.notify(table, "row_count", check.Match)
	return check, nil
}
