package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/aws"
	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/rollback"
	"github.com/my2lite/my2lite/internal/state"
	"github.com/my2lite/my2lite/internal/target"
)

var (
	rollbackTables  []string
	rollbackConfirm bool
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Drop the tables of the last run and remove its upload",
	Long:  `Drop the tables the last migrate run created in the SQLite file, delete the uploaded copy from S3 and release a stale lock file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rollbackConfirm {
			fmt.Println("Rollback requires --confirm to proceed.")
			fmt.Println("This will DROP tables from the SQLite file of the last run.")
			return nil
		}

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		if st.LastRun == nil {
			fmt.Println("No migration has been run yet.")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var tgt target.Writer
		if _, err := os.Stat(st.LastRun.TargetPath); err == nil {
			w, err := target.OpenSQLite(ctx, st.LastRun.TargetPath)
			if err != nil {
				fmt.Printf("Warning: could not open %s: %v\n", st.LastRun.TargetPath, err)
			} else {
				tgt = w
				defer w.Close()
			}
		}

		var client aws.Client
		if st.LastRun.UploadURI != "" {
			var profile, region string
			if cfg, err := config.LoadOrDefault(cfgFile); err == nil && cfg.Target.Upload != nil {
				profile, region = cfg.Target.Upload.Profile, cfg.Target.Upload.Region
			}
			c, err := aws.NewRealClient(ctx, profile, region)
			if err != nil {
				fmt.Printf("Warning: could not create AWS client: %v\n", err)
			} else {
				client = c
			}
		}

		uploadURI := st.LastRun.UploadURI
		rb := rollback.New(tgt, client, st)
		result, err := rb.Execute(ctx, rollback.Options{
			Tables:     rollbackTables,
			SkipUpload: client == nil,
			SkipTarget: tgt == nil,
		})
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}

		if len(result.DroppedTables) > 0 {
			fmt.Printf("Dropped tables: %v\n", result.DroppedTables)
		}
		if result.UploadRemoved {
			fmt.Printf("Removed %s\n", uploadURI)
		}
		if result.LockReleased {
			fmt.Println("Lock released.")
		}
		if len(result.Errors) > 0 {
			fmt.Println("Errors during rollback:")
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
		}

		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		return nil
	},
}

func init() {
	rollbackCmd.Flags().StringSliceVar(&rollbackTables, "tables", nil, "specific tables to roll back")
	rollbackCmd.Flags().BoolVar(&rollbackConfirm, "confirm", false, "skip confirmation prompt")
	rootCmd.AddCommand(rollbackCmd)
}
