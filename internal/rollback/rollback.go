// Package rollback undoes the last migration run: it drops the tables the
// run created, removes the uploaded copy and clears the recorded run.
package rollback

import (
	"context"
	"fmt"
	"os"

	"github.com/my2lite/my2lite/internal/aws"
	"github.com/my2lite/my2lite/internal/lock"
	"github.com/my2lite/my2lite/internal/state"
	"github.com/my2lite/my2lite/internal/target"
)

// Rollback orchestrates cleanup of a migration.
type Rollback struct {
	target    target.Writer
	awsClient aws.Client
	state     *state.State
}

// Options controls what gets rolled back.
type Options struct {
	Tables     []string // empty = every table of the last run
	SkipUpload bool
	SkipTarget bool
}

// Result holds the outcome of a rollback.
type Result struct {
	DroppedTables []string `yaml:"dropped_tables"`
	UploadRemoved bool     `yaml:"upload_removed"`
	LockReleased  bool     `yaml:"lock_released"`
	StateCleared  bool     `yaml:"state_cleared"`
	Errors        []string `yaml:"errors,omitempty"`
}

// New creates a new Rollback orchestrator. tgt and client may be nil.
func New(tgt target.Writer, client aws.Client, st *state.State) *Rollback {
	return &Rollback{
		target:    tgt,
		awsClient: client,
		state:     st,
	}
}

// Execute performs the rollback. Each step continues even if a prior step fails.
// Nothing is touched while another running process holds the target's lock.
func (r *Rollback) Execute(ctx context.Context, opts Options) (*Result, error) {
	run := r.state.LastRun
	if run == nil {
		return nil, fmt.Errorf("no recorded run to roll back")
	}

	lockPath := lock.PathFor(run.TargetPath)
	held, pid, err := lock.IsHeld(lockPath)
	if err != nil {
		return nil, fmt.Errorf("checking lock %s: %w", lockPath, err)
	}
	if held && pid != os.Getpid() {
		return nil, fmt.Errorf("%s is being written by a running my2lite instance (PID %d)", run.TargetPath, pid)
	}

	result := &Result{}

	// Step 1: Drop SQLite tables
	if !opts.SkipTarget && r.target != nil {
		tables := opts.Tables
		if len(tables) == 0 {
			tables = tablesFromRun(run)
		}
		if len(tables) > 0 {
			if err := r.target.DropTables(ctx, tables); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("dropping tables: %v", err))
			} else {
				result.DroppedTables = tables
			}
		}
	}

	// Step 2: Remove the uploaded database and its report
	if !opts.SkipUpload && r.awsClient != nil && run.UploadURI != "" {
		bucket, key, ok := aws.ParseS3URI(run.UploadURI)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid upload URI %q", run.UploadURI))
		} else {
			err := r.awsClient.DeleteFromS3(ctx, bucket, key)
			if err == nil {
				err = r.awsClient.DeleteFromS3(ctx, bucket, key+".report.json")
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("removing upload: %v", err))
			} else {
				result.UploadRemoved = true
			}
		}
	}

	// Step 3: Release a lock left by an interrupted run
	if err := lock.Release(lockPath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("releasing lock: %v", err))
	} else {
		result.LockReleased = true
	}

	// Step 4: Forget the run only when a partial rollback did not leave anything behind
	if len(opts.Tables) == 0 && len(result.Errors) == 0 {
		r.state.LastRun = nil
		result.StateCleared = true
	}

	return result, nil
}

func tablesFromRun(run *state.Run) []string {
	names := make([]string, 0, len(run.Tables))
	for _, t := range run.Tables {
		names = append(names, t.Name)
	}
	return names
}
