// Package app orchestrates the two pipeline entry points. Ingest and
// Transform are independent and idempotent; they share state only through the
// persisted table, so the external scheduler re-invokes the same entry point
// with the same date to recover from any failure.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"us-daily-bars/internal/model"
	"us-daily-bars/internal/normalize"
	"us-daily-bars/internal/provider"
	"us-daily-bars/internal/saver"
	"us-daily-bars/internal/store"
)

// App holds the wired pipeline dependencies.
type App struct {
	Config   *Config
	Provider provider.DataProvider
	Store    *store.Store
	Saver    saver.SnapshotSaver // nil when snapshot export is disabled
	Log      *slog.Logger
}

// Ingest fetches the grouped snapshot for date (YYYY-MM-DD), normalizes and
// persists it, and records run metadata. A date with no trading activity is a
// successful no-op. Safe to call twice with the same date.
func (a *App) Ingest(ctx context.Context, date string) error {
	start := time.Now()

	snap, err := a.Provider.GroupedDaily(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch grouped daily bars: %w", err)
	}
	if !snap.HasData {
		a.Log.Info("no trading activity", "date", date)
		a.logRun(ctx, date, 0, time.Since(start))
		return nil
	}

	bars, dropped := normalize.Batch(snap.Results, date)
	if dropped > 0 {
		a.Log.Warn("dropped malformed or duplicate records", "date", date, "dropped", dropped, "received", len(snap.Results))
	}
	if len(bars) == 0 {
		return fmt.Errorf("all %d records for %s failed validation", len(snap.Results), date)
	}

	rows, err := a.Store.UpsertDailyBars(ctx, bars)
	if err != nil {
		return fmt.Errorf("persist daily bars: %w", err)
	}

	a.writeSnapshot(date, bars)
	a.logRun(ctx, date, rows, time.Since(start))

	a.Log.Info("ingest done", "date", date, "rows", rows, "dropped", dropped,
		"duration_sec", time.Since(start).Seconds())
	return nil
}

// Transform computes daily returns for date against the most recent prior
// trading date with data. When no prior date exists there is nothing to
// compare against and Transform exits cleanly.
func (a *App) Transform(ctx context.Context, date string) error {
	prev, ok, err := a.Store.PrevTradingDate(ctx, date)
	if err != nil {
		return fmt.Errorf("look up previous trading date: %w", err)
	}
	if !ok {
		a.Log.Info("no trading data before date, skipping update", "date", date)
		return nil
	}

	updated, err := a.Store.ComputeDailyReturns(ctx, prev, date)
	if err != nil {
		return fmt.Errorf("compute daily returns: %w", err)
	}

	a.Log.Info("daily returns updated", "date", date, "previous_date", prev, "updated", updated)
	return nil
}

// logRun records run metadata. Ingestion has already succeeded by this point,
// so a bookkeeping failure is reported but never escalates.
func (a *App) logRun(ctx context.Context, date string, rows int, dur time.Duration) {
	run := model.IngestionRun{
		IngestionDate: date,
		RowCount:      rows,
		Duration:      dur,
		LoggedAt:      time.Now().UTC(),
	}
	if err := a.Store.LogIngestionRun(ctx, run); err != nil {
		a.Log.Warn("could not record ingestion run", "date", date, "error", err)
	}
}

// writeSnapshot exports the normalized bars to SnapshotDir. Best-effort.
func (a *App) writeSnapshot(date string, bars []model.Bar) {
	if a.Saver == nil || a.Config.SnapshotDir == "" || len(bars) == 0 {
		return
	}
	if err := os.MkdirAll(a.Config.SnapshotDir, 0755); err != nil {
		a.Log.Warn("snapshot: cannot create dir", "dir", a.Config.SnapshotDir, "error", err)
		return
	}
	path := filepath.Join(a.Config.SnapshotDir, fmt.Sprintf("bars_%s.%s", date, a.Saver.Extension()))
	if err := a.Saver.Save(bars, path); err != nil {
		a.Log.Warn("snapshot: failed to write", "path", path, "error", err)
		return
	}
	a.Log.Info("snapshot saved", "path", path, "bars", len(bars))
}
