package app

import (
	"context"
	"fmt"
	"log/slog"

	"us-daily-bars/internal/provider"
	"us-daily-bars/internal/saver"
	"us-daily-bars/internal/slogx"
	"us-daily-bars/internal/store"
)

// ProvideConfig loads and validates config (for Wire). A missing required
// setting fails here, before any network or database call.
func ProvideConfig() (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideLogger creates the process logger from config and installs it as
// the slog default (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	l := slogx.NewDefault(cfg.LogLevel)
	slog.SetDefault(l)
	return l
}

// ProvideSnapshotSaver creates the snapshot saver from config (for Wire).
// Returns nil when snapshot export is disabled; errors on an unknown format.
func ProvideSnapshotSaver(cfg *Config) (saver.SnapshotSaver, error) {
	if cfg.SnapshotDir == "" {
		return nil, nil
	}
	s := saver.NewSnapshotSaver(cfg.SnapshotFormat)
	if s == nil {
		return nil, fmt.Errorf("unsupported SNAPSHOT_FORMAT %q (use: csv, parquet, json)", cfg.SnapshotFormat)
	}
	return s, nil
}

// ProvideStore opens the Postgres connection, ensures the schema and returns
// the store with its cleanup (for Wire).
func ProvideStore(cfg *Config) (*store.Store, func(), error) {
	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return nil, nil, err
	}
	st := store.New(db)
	if err := st.EnsureSchema(context.Background()); err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

// ProvidePolygonProvider creates the Polygon-backed DataProvider (for Wire).
func ProvidePolygonProvider(cfg *Config) *provider.PolygonProvider {
	p := provider.NewPolygonProvider(cfg.PolygonAPIKey)
	p.SetMaxAttempts(cfg.FetchMaxAttempts)
	return p
}
