package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PostgresConfig holds relational store settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Config holds application configuration. Values come from an optional YAML
// file (CONFIG_FILE) overridden by environment variables; env names match the
// deployment the pipeline runs in.
type Config struct {
	PolygonAPIKey    string         `yaml:"polygon_api_key"`
	Postgres         PostgresConfig `yaml:"postgres"`
	LogLevel         string         `yaml:"log_level"` // debug | info | warn | error
	FetchMaxAttempts int            `yaml:"fetch_max_attempts"`
	RunTimeout       time.Duration  `yaml:"run_timeout"`     // deadline budget for one invocation
	SnapshotDir      string         `yaml:"snapshot_dir"`    // empty disables snapshot export
	SnapshotFormat   string         `yaml:"snapshot_format"` // csv | parquet | json
}

// LoadConfig reads config from CONFIG_FILE (when set) and the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		LogLevel:         "info",
		FetchMaxAttempts: 3,
		RunTimeout:       30 * time.Minute,
		SnapshotFormat:   "csv",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.PolygonAPIKey = getEnv("POLYGON_API_KEY", cfg.PolygonAPIKey)
	cfg.Postgres.User = getEnv("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = getEnv("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Database = getEnv("POSTGRES_DB", cfg.Postgres.Database)
	cfg.Postgres.Host = getEnv("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)
	if p := os.Getenv("POSTGRES_PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid POSTGRES_PORT %q", p)
		}
		cfg.Postgres.Port = v
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.SnapshotDir = getEnv("SNAPSHOT_DIR", cfg.SnapshotDir)
	cfg.SnapshotFormat = getEnv("SNAPSHOT_FORMAT", cfg.SnapshotFormat)
	if a := os.Getenv("FETCH_MAX_ATTEMPTS"); a != "" {
		if v, err := strconv.Atoi(a); err == nil && v > 0 {
			cfg.FetchMaxAttempts = v
		}
	}
	if v := os.Getenv("RUN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid RUN_TIMEOUT %q", v)
		}
		cfg.RunTimeout = d
	}

	return cfg, nil
}

// Validate reports every missing required setting. Called before any network
// or database work is attempted.
func (c *Config) Validate() error {
	var missing []string
	if c.PolygonAPIKey == "" {
		missing = append(missing, "POLYGON_API_KEY")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Postgres.Database == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
