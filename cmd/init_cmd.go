package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Prompt for the MySQL connection and the SQLite file, then write ~/.my2lite/my2lite.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := promptConfig(bufio.NewReader(os.Stdin), cmd.OutOrStdout())
		if err != nil {
			return err
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}
		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Config written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  my2lite discover   Discover the source tables")
		fmt.Println("  my2lite migrate    Copy them into the SQLite file")
		return nil
	},
}

func promptConfig(reader *bufio.Reader, w io.Writer) (*config.Config, error) {
	fmt.Fprintln(w, "my2lite Configuration Setup")
	fmt.Fprintln(w, "===========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MySQL Source")
	fmt.Fprintln(w, "------------")
	host := prompt(reader, w, "Host", "localhost")
	portStr := prompt(reader, w, "Port", "3306")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %s", portStr)
	}
	database := prompt(reader, w, "Database name", "")
	username := prompt(reader, w, "Username", "root")
	password := prompt(reader, w, "Password (or ${ENV:NAME})", "")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SQLite Target")
	fmt.Fprintln(w, "-------------")
	defaultPath := "out.db"
	if database != "" {
		defaultPath = database + ".db"
	}
	path := prompt(reader, w, "Database file", defaultPath)
	fmt.Fprintln(w)

	cfg := &config.Config{
		Version: config.CurrentVersion,
		Source: config.SourceConfig{
			Host:     host,
			Port:     port,
			Database: database,
			Username: username,
			Password: password,
		},
		Target: config.TargetConfig{Path: path},
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, w io.Writer, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
