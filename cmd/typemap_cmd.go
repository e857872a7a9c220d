package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/schema"
	"github.com/my2lite/my2lite/internal/tui"
	"github.com/my2lite/my2lite/internal/typemap"
)

var typemapSchema string

var typemapCmd = &cobra.Command{
	Use:   "typemap",
	Short: "Show, export or edit the MySQL to SQLite type mapping",
}

var typemapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective type mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, _, err := loadTypeMap()
		if err != nil {
			return err
		}

		fmt.Printf("%-14s %-8s\n", "MySQL", "SQLite")
		for _, src := range tm.SortedTypes() {
			mark := ""
			if tm.IsOverridden(src) {
				mark = "  (override)"
			}
			fmt.Printf("%-14s %-8s%s\n", src, tm.Resolve(src), mark)
		}
		fmt.Printf("\nAny other type maps to %s.\n", typemap.Fallback)
		return nil
	},
}

var typemapExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the effective type mapping to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, _, err := loadTypeMap()
		if err != nil {
			return err
		}
		if err := tm.WriteYAML(args[0]); err != nil {
			return err
		}
		fmt.Printf("Type mapping written to %s\n", args[0])
		return nil
	},
}

var typemapEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Interactive type mapping editor",
	Long: `Review every mapping and override individual types. Types found in a
discovered schema (--schema) are listed even when they have no mapping yet.
The result is saved to migration.type_mapping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tm, path, err := loadTypeMap()
		if err != nil {
			return err
		}
		if path == "" {
			path = config.ExpandHome("~/.my2lite/typemap.yaml")
		}

		var extra []string
		if typemapSchema != "" {
			s, err := schema.LoadYAML(typemapSchema)
			if err != nil {
				return err
			}
			for _, t := range s.Tables {
				for _, c := range t.Definition.Columns {
					extra = append(extra, c.SourceType)
				}
			}
		}

		edited, err := tui.EditTypeMap(tm, extra)
		if err != nil {
			return err
		}
		if edited == nil {
			fmt.Println("Cancelled; nothing saved.")
			return nil
		}
		if err := edited.WriteYAML(path); err != nil {
			return err
		}
		fmt.Printf("Type mapping saved to %s (%d override(s))\n", path, len(edited.Overrides))
		fmt.Printf("Set migration.type_mapping: %s in the config file to use it.\n", path)
		return nil
	},
}

// loadTypeMap returns the defaults with the configured overrides applied and
// the overrides path from the config.
func loadTypeMap() (*typemap.TypeMap, string, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	path := cfg.Migration.TypeMapping
	tm, err := typemap.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading type mapping: %w", err)
	}
	return tm, path, nil
}

func init() {
	typemapEditCmd.Flags().StringVar(&typemapSchema, "schema", "", "schema YAML written by discover")
	typemapCmd.AddCommand(typemapShowCmd)
	typemapCmd.AddCommand(typemapExportCmd)
	typemapCmd.AddCommand(typemapEditCmd)
	rootCmd.AddCommand(typemapCmd)
}
