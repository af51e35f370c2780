package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kpi-service/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://kpi@localhost/kpi?sslmode=disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns != 20 || cfg.DBMaxIdleConns != 10 {
		t.Fatalf("unexpected pool sizes: %+v", cfg)
	}
	if cfg.DBConnMaxLifetime != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %v", cfg.DBConnMaxLifetime)
	}
	if cfg.CacheTTL != 5*time.Minute || cfg.CachePurgeInterval != 10*time.Minute {
		t.Fatalf("unexpected cache settings: %+v", cfg)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("expected page size 100, got %d", cfg.PageSize)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log settings: %+v", cfg)
	}
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("KPI_POSTGRES_DSN", "")

	_, err := config.Load()
	if !errors.Is(err, config.ErrMissingDSN) {
		t.Fatalf("expected ErrMissingDSN, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://bare")
	t.Setenv("KPI_POSTGRES_DSN", "postgres://prefixed")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("KPI_PAGE_SIZE", "25")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PostgresDSN != "postgres://prefixed" {
		t.Fatalf("expected prefixed DSN to win, got %q", cfg.PostgresDSN)
	}
	if cfg.DBDriver != "pgx" {
		t.Fatalf("expected pgx, got %q", cfg.DBDriver)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %v", cfg.CacheTTL)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("expected page size 25, got %d", cfg.PageSize)
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://x")
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kpi.yaml")
	body := "postgres_dsn: postgres://from-file\nhttp_addr: \":9090\"\nlog_format: console\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KPI_CONFIG", path)
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("KPI_POSTGRES_DSN", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PostgresDSN != "postgres://from-file" || cfg.HTTPAddr != ":9090" || cfg.LogFormat != "console" {
		t.Fatalf("unexpected config from file: %+v", cfg)
	}
}
