package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate the my2lite configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Source:\n")
		fmt.Printf("    Host:           %s\n", cfg.Source.Host)
		fmt.Printf("    Port:           %d\n", cfg.Source.Port)
		fmt.Printf("    Database:       %s\n", cfg.Source.Database)
		fmt.Printf("    Username:       %s\n", cfg.Source.Username)
		fmt.Printf("    Password:       %s\n", maskSecret(cfg.Source.Password))
		fmt.Printf("    Charset:        %s\n", cfg.Source.Charset)
		if ssh := cfg.Source.SSH; ssh != nil {
			fmt.Printf("    SSH:            %s@%s:%d\n", ssh.User, ssh.Host, ssh.Port)
		}
		fmt.Println()
		fmt.Printf("  Target:\n")
		fmt.Printf("    Path:           %s\n", cfg.Target.Path)
		if up := cfg.Target.Upload; up != nil {
			fmt.Printf("    Upload:         s3://%s/%s\n", up.Bucket, up.Key)
		}
		fmt.Println()
		fmt.Printf("  Migration:\n")
		fmt.Printf("    Batch size:     %d\n", cfg.Migration.BatchSize)
		fmt.Printf("    Include:        %s\n", strings.Join(cfg.Migration.Include, ", "))
		fmt.Printf("    Exclude:        %s\n", strings.Join(cfg.Migration.Exclude, ", "))
		fmt.Printf("    Validate:       %t\n", cfg.Migration.Validate)
		if cfg.Migration.TypeMapping != "" {
			fmt.Printf("    Type mapping:   %s\n", cfg.Migration.TypeMapping)
		}

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		if problems := cfg.Validate(); len(problems) > 0 {
			fmt.Println("Validation errors:")
			for _, e := range problems {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("%d validation error(s)", len(problems))
		}

		fmt.Println("Configuration is valid.")
		return nil
	},
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
