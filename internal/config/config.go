package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.my2lite/my2lite.yaml"

	DefaultBatchSize = 1000
)

// Config is the top-level configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Source    SourceConfig    `yaml:"source"`
	Target    TargetConfig    `yaml:"target"`
	Migration MigrationConfig `yaml:"migration,omitempty"`
	Logging   LogConfig       `yaml:"logging,omitempty"`
}

// SourceConfig defines the MySQL source connection.
type SourceConfig struct {
	Host     string     `yaml:"host"`
	Port     int        `yaml:"port"`
	Database string     `yaml:"database"`
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	Charset  string     `yaml:"charset,omitempty"` // default utf8mb4
	SSH      *SSHConfig `yaml:"ssh,omitempty"`
}

// SSHConfig describes an optional SSH jump host in front of MySQL.
type SSHConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port,omitempty"` // default 22
	User    string `yaml:"user"`
	KeyFile string `yaml:"key_file"`
	// KnownHosts enables host key checking; empty accepts any host key.
	KnownHosts string `yaml:"known_hosts,omitempty"`
}

// TargetConfig defines the SQLite target file.
type TargetConfig struct {
	Path   string        `yaml:"path"`
	Upload *UploadConfig `yaml:"upload,omitempty"`
}

// UploadConfig publishes the finished database file to S3.
type UploadConfig struct {
	Bucket  string `yaml:"bucket"`
	Key     string `yaml:"key,omitempty"` // default: base name of target.path
	Region  string `yaml:"region,omitempty"`
	Profile string `yaml:"profile,omitempty"`
}

// MigrationConfig controls table selection and copy behaviour.
type MigrationConfig struct {
	BatchSize   int      `yaml:"batch_size,omitempty"`
	Include     []string `yaml:"include,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Validate    bool     `yaml:"validate,omitempty"`
	TypeMapping string   `yaml:"type_mapping,omitempty"` // path to a typemap YAML with overrides
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.my2lite/logs/
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns a default config when the file does not exist.
// Commands that accept every setting as a flag use it so a config file stays optional.
func LoadOrDefault(path string) (*Config, error) {
	resolved := path
	if resolved == "" {
		resolved = ExpandHome(DefaultPath)
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		if path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		cfg := &Config{Version: CurrentVersion}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// ApplyDefaults fills unset fields. It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.Source.Host == "" {
		c.Source.Host = "localhost"
	}
	if c.Source.Port == 0 {
		c.Source.Port = 3306
	}
	if c.Source.Charset == "" {
		c.Source.Charset = "utf8mb4"
	}
	if c.Source.SSH != nil && c.Source.SSH.Port == 0 {
		c.Source.SSH.Port = 22
	}
	if c.Migration.BatchSize <= 0 {
		c.Migration.BatchSize = DefaultBatchSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = "~/.my2lite/logs/"
	}

	c.Target.Path = ExpandHome(c.Target.Path)
	c.Migration.TypeMapping = ExpandHome(c.Migration.TypeMapping)
	c.Logging.Directory = ExpandHome(c.Logging.Directory)
}

// Validate reports every missing required setting.
func (c *Config) Validate() []string {
	var problems []string
	if c.Source.Host == "" {
		problems = append(problems, "source.host is required")
	}
	if c.Source.Database == "" {
		problems = append(problems, "source.database is required")
	}
	if c.Source.Username == "" {
		problems = append(problems, "source.username is required")
	}
	if c.Target.Path == "" {
		problems = append(problems, "target.path is required")
	}
	if c.Source.SSH != nil {
		if c.Source.SSH.Host == "" {
			problems = append(problems, "source.ssh.host is required when ssh is configured")
		}
		if c.Source.SSH.KeyFile == "" {
			problems = append(problems, "source.ssh.key_file is required when ssh is configured")
		}
	}
	if c.Target.Upload != nil && c.Target.Upload.Bucket == "" {
		problems = append(problems, "target.upload.bucket is required when upload is configured")
	}
	return problems
}

var secretPattern = regexp.MustCompile(`\$\{(ENV|VAULT|AWS_SM):([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Source.Password, err = ResolveValue(c.Source.Password)
	if err != nil {
		return fmt.Errorf("source password: %w", err)
	}
	c.Source.Username, err = ResolveValue(c.Source.Username)
	if err != nil {
		return fmt.Errorf("source username: %w", err)
	}
	return nil
}

// ResolveValue resolves secret references in a string value.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}

	provider := matches[1]
	ref := matches[2]

	switch provider {
	case "ENV":
		v := os.Getenv(ref)
		if v == "" {
			return "", fmt.Errorf("environment variable %s not set", ref)
		}
		return v, nil
	case "VAULT":
		return resolveVault(ref)
	case "AWS_SM":
		return resolveAWSSecretsManager(ref)
	default:
		return "", fmt.Errorf("unknown secrets provider: %s", provider)
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
