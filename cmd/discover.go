package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/discovery"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/typemap"
)

var (
	discoverOutput  string
	discoverInclude []string
	discoverExclude []string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover source tables and their SQLite translation",
	Long:  `Connect to MySQL, list every base table with its estimated row count and size, translate each definition and write the result as a schema YAML file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		tm, err := typemap.Load(cfg.Migration.TypeMapping)
		if err != nil {
			return fmt.Errorf("loading type mapping: %w", err)
		}

		ctx := context.Background()

		fmt.Printf("Connecting to %s...\n", sourceLabel(cfg.Source))
		reader := source.NewMySQLReader(cfg.Source)
		if err := reader.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to source: %w", err)
		}
		defer reader.Close()

		include, exclude := cfg.Migration.Include, cfg.Migration.Exclude
		if cmd.Flags().Changed("include") {
			include = discoverInclude
		}
		if cmd.Flags().Changed("exclude") {
			exclude = discoverExclude
		}

		fmt.Println("Discovering schema...")
		d := &discovery.Discoverer{
			Source:     reader,
			Translator: ddl.NewTranslator(tm),
			Include:    include,
			Exclude:    exclude,
		}
		s, err := d.Discover(ctx, cfg.Source.Host, cfg.Source.Database)
		if err != nil {
			return fmt.Errorf("discovering schema: %w", err)
		}

		fmt.Println(s.Summary())
		for _, t := range s.Tables {
			if t.Status == string(ddl.StatusFailed) {
				fmt.Printf("  %s: translation failed\n", t.Name)
			}
		}

		if discoverOutput == "-" {
			data, err := s.ToYAML()
			if err != nil {
				return fmt.Errorf("marshaling schema: %w", err)
			}
			fmt.Printf("\n%s", data)
			return nil
		}
		if err := s.WriteYAML(discoverOutput); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
		fmt.Printf("\nSchema written to %s\n", discoverOutput)
		return nil
	},
}

func init() {
	addSourceFlags(discoverCmd.Flags())
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "my2lite-schema.yaml", "output file for discovered schema (- for stdout)")
	discoverCmd.Flags().StringSliceVar(&discoverInclude, "include", nil, "only discover tables matching these globs")
	discoverCmd.Flags().StringSliceVar(&discoverExclude, "exclude", nil, "skip tables matching these globs")
	rootCmd.AddCommand(discoverCmd)
}
