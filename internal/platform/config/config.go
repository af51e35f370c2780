// Package config loads service configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingDSN is returned when no database DSN is configured.
var ErrMissingDSN = errors.New("POSTGRES_DSN is not set")

// Config holds everything cmd/api needs to start.
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	DBDriver          string        `mapstructure:"db_driver"` // "postgres" (lib/pq) or "pgx"
	PostgresDSN       string        `mapstructure:"postgres_dsn"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`

	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	CachePurgeInterval time.Duration `mapstructure:"cache_purge_interval"`
	PageSize           int           `mapstructure:"page_size"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("db_max_open_conns", 20)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", 30*time.Minute)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("cache_purge_interval", 10*time.Minute)
	v.SetDefault("page_size", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads defaults, then the file named by KPI_CONFIG (if set), then
// environment variables. Both POSTGRES_DSN and KPI_POSTGRES_DSN are honoured.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("kpi_config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// KPI_ prefixed variables win over bare ones.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, "KPI_"+strings.ToUpper(key), strings.ToUpper(key))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.PostgresDSN) == "" {
		return ErrMissingDSN
	}
	switch c.DBDriver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	return nil
}
