//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/source"
)

func mysqlConfig(t *testing.T) config.SourceConfig {
	t.Helper()
	port, err := strconv.Atoi(envOrDefault("MY2LITE_TEST_MYSQL_PORT", "23306"))
	if err != nil {
		t.Fatalf("invalid MY2LITE_TEST_MYSQL_PORT: %v", err)
	}
	cfg := config.SourceConfig{
		Host:     envOrDefault("MY2LITE_TEST_MYSQL_HOST", "127.0.0.1"),
		Port:     port,
		Database: envOrDefault("MY2LITE_TEST_MYSQL_DATABASE", "my2lite_test"),
		Username: envOrDefault("MY2LITE_TEST_MYSQL_USER", "root"),
		Password: envOrDefault("MY2LITE_TEST_MYSQL_PASSWORD", "root"),
		Charset:  "utf8mb4",
	}
	return cfg
}

func skipIfNoMySQL(t *testing.T) {
	t.Helper()
	if os.Getenv("MY2LITE_TEST_MYSQL_HOST") == "" && os.Getenv("MY2LITE_TEST_MYSQL_PORT") == "" {
		t.Skip("skipping: MY2LITE_TEST_MYSQL_HOST/PORT not set")
	}
}

// seedMySQL runs stmts against the test database with multi-statement support off.
func seedMySQL(t *testing.T, cfg config.SourceConfig, stmts ...string) {
	t.Helper()
	connector, err := mysql.NewConnector(source.DriverConfig(cfg))
	if err != nil {
		t.Fatalf("creating connector: %v", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	ctx := context.Background()
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("seeding %q: %v", s, err)
		}
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
