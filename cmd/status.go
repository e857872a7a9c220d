package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/lock"
	"github.com/my2lite/my2lite/internal/state"
	"github.com/my2lite/my2lite/internal/target"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last migration run",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}

		run := st.LastRun
		if run == nil {
			fmt.Println("No migration has been run yet.")
			return nil
		}

		completed, failed := run.Counts()
		fmt.Printf("Last run:  %s (%s ago)\n", run.CompletedAt.Format(time.RFC3339),
			time.Since(run.CompletedAt).Round(time.Second))
		fmt.Printf("Phase:     %s\n", run.Phase)
		fmt.Printf("Source:    %s\n", run.Source)
		fmt.Printf("Target:    %s\n", run.TargetPath)
		fmt.Printf("Duration:  %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
		fmt.Printf("Tables:    %d completed, %d failed\n", completed, failed)
		if run.ReportPath != "" {
			fmt.Printf("Report:    %s\n", run.ReportPath)
		}
		if run.UploadURI != "" {
			fmt.Printf("Upload:    %s\n", run.UploadURI)
		}

		held, pid, err := lock.IsHeld(lock.PathFor(run.TargetPath))
		if err == nil && held {
			fmt.Printf("\nA migration is running now (PID %d).\n", pid)
		}

		var missing []string
		if !held {
			present, err := targetTables(cmd.Context(), run.TargetPath)
			switch {
			case err != nil:
				fmt.Printf("\nWarning: could not read %s: %v\n", run.TargetPath, err)
			case present != nil:
				fmt.Printf("\nTarget file holds %d table(s).\n", len(present))
				missing = missingTables(run, present)
			}
		}

		if len(run.Tables) > 0 {
			fmt.Println()
			for _, t := range run.Tables {
				mark := "OK"
				if t.State != "completed" {
					mark = "XX"
				} else if slices.Contains(missing, t.Name) {
					mark = "--"
					t.Error = "no longer in the target file"
				}
				line := fmt.Sprintf("  [%s] %-30s %10d rows", mark, t.Name, t.Rows)
				if t.Warnings > 0 {
					line += fmt.Sprintf("  %d warning(s)", t.Warnings)
				}
				if t.Error != "" {
					line += "  " + t.Error
				}
				fmt.Println(line)
			}
		}

		if cfg, err := config.LoadOrDefault(cfgFile); err == nil && cfg.Target.Path != "" && cfg.Target.Path != run.TargetPath {
			fmt.Printf("\nNote: the configured target is now %s\n", cfg.Target.Path)
		}
		return nil
	},
}

// targetTables lists the tables of the SQLite file at path. A missing file
// yields nil.
func targetTables(ctx context.Context, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := target.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	tables, err := w.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

// missingTables returns the tables the run completed that present lacks.
func missingTables(run *state.Run, present []string) []string {
	var missing []string
	for _, t := range run.Tables {
		if t.State == "completed" && !slices.Contains(present, t.Name) {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
