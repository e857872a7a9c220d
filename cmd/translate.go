package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/selection"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/typemap"
)

var (
	translateFile   string
	translateOutput string
)

var translateCmd = &cobra.Command{
	Use:   "translate [table|glob...]",
	Short: "Print the SQLite CREATE TABLE for MySQL tables",
	Long: `Translate table definitions without copying any rows. Definitions are read
from the named source tables, or from a SQL script such as a mysqldump file
with --file. Warnings for dropped clauses are printed to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tm, err := typemap.Load(cfg.Migration.TypeMapping)
		if err != nil {
			return fmt.Errorf("loading type mapping: %w", err)
		}
		translator := ddl.NewTranslator(tm)

		var statements []string
		switch {
		case translateFile != "":
			data, err := os.ReadFile(translateFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", translateFile, err)
			}
			statements, err = ddl.CreateStatements(string(data))
			if err != nil {
				return fmt.Errorf("reading %s: %w", translateFile, err)
			}
			if len(statements) == 0 {
				return fmt.Errorf("no CREATE TABLE statements in %s", translateFile)
			}
		case len(args) > 0:
			statements, err = fetchDefinitions(cfg.Source, args)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("name at least one table or pass --file")
		}

		out := cmd.OutOrStdout()
		if translateOutput != "" {
			f, err := os.Create(translateOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", translateOutput, err)
			}
			defer f.Close()
			out = f
		}

		failed := writeTranslations(out, cmd.ErrOrStderr(), translator, statements)
		if failed > 0 {
			return fmt.Errorf("%d of %d table(s) could not be translated", failed, len(statements))
		}
		return nil
	},
}

func fetchDefinitions(src config.SourceConfig, patterns []string) ([]string, error) {
	ctx := context.Background()
	reader := source.NewMySQLReader(src)
	if err := reader.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to source: %w", err)
	}
	defer reader.Close()

	all, err := reader.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, pattern := range patterns {
		matched := selection.FilterByPattern(all, pattern)
		if len(matched) == 0 {
			return nil, fmt.Errorf("no table matches %q", pattern)
		}
		for _, t := range matched {
			s, err := reader.ShowCreateTable(ctx, t.Name)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

// writeTranslations writes each translated statement to out and its warnings
// to warn. It returns the number of statements that failed.
func writeTranslations(out, warn io.Writer, translator *ddl.Translator, statements []string) int {
	failed := 0
	for _, stmt := range statements {
		res, err := translator.Translate(stmt)
		if err != nil {
			failed++
			fmt.Fprintf(warn, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", res.SQL)
		for _, w := range res.Warnings {
			fmt.Fprintf(warn, "warning: %s: %s\n", res.Table, w)
		}
	}
	return failed
}

func init() {
	addSourceFlags(translateCmd.Flags())
	translateCmd.Flags().StringVarP(&translateFile, "file", "f", "", "read CREATE TABLE statements from a SQL file")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "write the SQLite statements to a file")
	rootCmd.AddCommand(translateCmd)
}
