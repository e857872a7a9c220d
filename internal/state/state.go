// Package state persists a summary of the most recent run for the status command.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/migration"
)

const DefaultPath = "~/.my2lite/state.yaml"

// State holds the last recorded run.
type State struct {
	LastUpdated time.Time `yaml:"last_updated"`
	LastRun     *Run      `yaml:"last_run,omitempty"`
}

// Run summarizes one migrate invocation.
type Run struct {
	StartedAt   time.Time    `yaml:"started_at"`
	CompletedAt time.Time    `yaml:"completed_at"`
	Phase       string       `yaml:"phase"` // completed, partial_failure, failed, cancelled
	Source      string       `yaml:"source"`
	TargetPath  string       `yaml:"target_path"`
	ReportPath  string       `yaml:"report_path,omitempty"`
	UploadURI   string       `yaml:"upload_uri,omitempty"`
	Tables      []TableState `yaml:"tables,omitempty"`
}

// TableState is the outcome of one table.
type TableState struct {
	Name     string `yaml:"name"`
	State    string `yaml:"state"`
	Rows     int64  `yaml:"rows"`
	Warnings int    `yaml:"warnings,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// Load reads the state from disk. A missing file yields an empty state.
func Load(path string) (*State, error) {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	s := &State{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return s, nil
}

// Save writes the state to disk.
func (s *State) Save(path string) error {
	if path == "" {
		path = config.ExpandHome(DefaultPath)
	}

	s.LastUpdated = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// NewRun builds a Run from a migration result. A nil result records a run
// that failed before any table was processed.
func NewRun(source, targetPath string, result *migration.Result, runErr error) *Run {
	run := &Run{Source: source, TargetPath: targetPath, CompletedAt: time.Now()}
	if result == nil {
		run.StartedAt = run.CompletedAt
		run.Phase = "failed"
		return run
	}

	run.StartedAt = result.StartedAt
	if !result.CompletedAt.IsZero() {
		run.CompletedAt = result.CompletedAt
	}
	for _, t := range result.Tables {
		ts := TableState{Name: t.Name, State: t.State, Rows: t.Rows, Warnings: len(t.Warnings)}
		if t.Error != nil {
			ts.Error = t.Error.Error()
		}
		run.Tables = append(run.Tables, ts)
	}

	failed := len(result.Failed())
	switch {
	case runErr != nil:
		run.Phase = "cancelled"
	case failed == 0:
		run.Phase = "completed"
	case failed < len(result.Tables):
		run.Phase = "partial_failure"
	default:
		run.Phase = "failed"
	}
	return run
}

// Counts returns the number of completed and failed tables in the run.
func (r *Run) Counts() (completed, failed int) {
	for _, t := range r.Tables {
		if t.State == "completed" {
			completed++
		} else {
			failed++
		}
	}
	return completed, failed
}
