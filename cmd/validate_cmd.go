package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/selection"
	"github.com/my2lite/my2lite/internal/target"
	"github.com/my2lite/my2lite/internal/validation"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare MySQL and SQLite row counts",
	Long:  `Count the rows of every selected table on both sides and report mismatches. Exits non-zero unless every table matches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if problems := cfg.Validate(); len(problems) > 0 {
			return fmt.Errorf("config invalid: %s", problems[0])
		}

		ctx := context.Background()
		reader, err := connectSource(ctx, cfg.Source)
		if err != nil {
			return err
		}
		defer reader.Close()

		if _, err := os.Stat(cfg.Target.Path); err != nil {
			return fmt.Errorf("opening target: %w", err)
		}
		writer, err := target.OpenSQLite(ctx, cfg.Target.Path)
		if err != nil {
			return err
		}
		defer writer.Close()

		tables, err := reader.ListTables(ctx)
		if err != nil {
			return fmt.Errorf("listing tables: %w", err)
		}
		tables = selection.Apply(tables, cfg.Migration.Include, cfg.Migration.Exclude)
		if !validateJSON {
			fmt.Printf("Validating %d tables (~%d rows)\n", len(tables), selection.TotalRows(tables))
		}

		v := &validation.Validator{
			Source: reader,
			Target: writer,
			Callback: func(table, checkType string, passed bool) {
				if validateJSON {
					return
				}
				mark := "OK"
				if !passed {
					mark = "MISMATCH"
				}
				fmt.Printf("  %-30s %s\n", table, mark)
			},
		}

		result, err := v.ValidateRowCounts(ctx, selection.Names(tables))
		if err != nil {
			return err
		}

		if validateJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling result: %w", err)
			}
			fmt.Println(string(data))
		} else {
			for _, t := range result.Tables {
				if t.RowCountCheck != nil && !t.RowCountCheck.Match {
					fmt.Printf("  %s: %s\n", t.Name, t.RowCountCheck.Message)
				}
			}
			fmt.Printf("\nValidation: %s (%d tables)\n", result.Status, len(result.Tables))
		}

		if result.Status != "PASS" {
			return fmt.Errorf("validation %s", result.Status)
		}
		return nil
	},
}

func init() {
	addSourceFlags(validateCmd.Flags())
	addTargetFlag(validateCmd.Flags())
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(validateCmd)
}
