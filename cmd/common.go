package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/logging"
)

// sourceFlags override the source section of the config file.
type sourceFlags struct {
	host     string
	port     int
	user     string
	password string
	database string
	charset  string
	sqlite   string
}

var srcFlags sourceFlags

func addSourceFlags(f *pflag.FlagSet) {
	f.StringVar(&srcFlags.host, "host", "", "MySQL host (default localhost)")
	f.IntVar(&srcFlags.port, "port", 0, "MySQL port (default 3306)")
	f.StringVarP(&srcFlags.user, "user", "u", "", "MySQL user")
	f.StringVarP(&srcFlags.password, "password", "p", "", "MySQL password (accepts ${ENV:..}, ${VAULT:..}, ${AWS_SM:..})")
	f.StringVarP(&srcFlags.database, "database", "d", "", "MySQL database")
	f.StringVar(&srcFlags.charset, "charset", "", "connection character set (default utf8mb4)")
}

func addTargetFlag(f *pflag.FlagSet) {
	f.StringVar(&srcFlags.sqlite, "sqlite", "", "SQLite database file")
}

// loadConfig reads the optional config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Source.Host = srcFlags.host
	}
	if f.Changed("port") {
		cfg.Source.Port = srcFlags.port
	}
	if f.Changed("user") {
		cfg.Source.Username = srcFlags.user
	}
	if f.Changed("password") {
		pw, err := config.ResolveValue(srcFlags.password)
		if err != nil {
			return nil, fmt.Errorf("resolving password: %w", err)
		}
		cfg.Source.Password = pw
	}
	if f.Changed("database") {
		cfg.Source.Database = srcFlags.database
	}
	if f.Changed("charset") {
		cfg.Source.Charset = srcFlags.charset
	}
	if f.Lookup("sqlite") != nil && f.Changed("sqlite") {
		cfg.Target.Path = srcFlags.sqlite
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// setupLogger opens the dated log file; when that fails the command still
// runs with logging disabled.
func setupLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func()) {
	logger, closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v; continuing without a log file\n", err)
		return logging.Discard(), func() {}
	}
	return logger, func() { closer.Close() }
}

func sourceLabel(src config.SourceConfig) string {
	return fmt.Sprintf("mysql://%s@%s:%d/%s", src.Username, src.Host, src.Port, src.Database)
}
