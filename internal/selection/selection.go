// Package selection narrows the discovered table set with include/exclude patterns.
package selection

import (
	"path"
	"strings"

	"github.com/my2lite/my2lite/internal/source"
)

// FilterByPattern returns tables matching a glob-like pattern (e.g., "order_*").
func FilterByPattern(tables []source.TableInfo, pattern string) []source.TableInfo {
	var matched []source.TableInfo
	for _, t := range tables {
		if matchGlob(t.Name, pattern) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Apply keeps tables matching any include pattern (all tables when include is
// empty) and then removes those matching any exclude pattern. Order is preserved.
func Apply(tables []source.TableInfo, include, exclude []string) []source.TableInfo {
	var selected []source.TableInfo
	for _, t := range tables {
		if len(include) > 0 && !matchAny(t.Name, include) {
			continue
		}
		if matchAny(t.Name, exclude) {
			continue
		}
		selected = append(selected, t)
	}
	return selected
}

// Names returns the table names in order.
func Names(tables []source.TableInfo) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// TotalRows returns the sum of the estimated row counts for the given tables.
func TotalRows(tables []source.TableInfo) int64 {
	var total int64
	for _, t := range tables {
		total += t.RowCount
	}
	return total
}

func matchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(name, p) {
			return true
		}
	}
	return false
}

func matchGlob(name, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "*" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
	return name == pattern
}
