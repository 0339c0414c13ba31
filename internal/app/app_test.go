package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"us-daily-bars/internal/provider"
	"us-daily-bars/internal/provider/polygon"
	"us-daily-bars/internal/saver"
	"us-daily-bars/internal/store"
)

type fakeProvider struct {
	snapshots map[string]*provider.GroupedSnapshot
	err       error
	calls     int
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) GroupedDaily(_ context.Context, date string) (*provider.GroupedSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.snapshots[date]; ok {
		return s, nil
	}
	return &provider.GroupedSnapshot{HasData: false}, nil
}

func (f *fakeProvider) Close() error { return nil }

func f64(v float64) *float64 { return &v }

func vol(v int64) *polygon.FlexibleInt64 {
	f := polygon.FlexibleInt64(v)
	return &f
}

func raw(ticker string, close float64) polygon.GroupedBarRaw {
	return polygon.GroupedBarRaw{
		Ticker: ticker,
		Open:   f64(close - 1),
		High:   f64(close + 2),
		Low:    f64(close - 3),
		Close:  f64(close),
		Volume: vol(1000),
	}
}

func snapshot(records ...polygon.GroupedBarRaw) *provider.GroupedSnapshot {
	return &provider.GroupedSnapshot{Results: records, HasData: len(records) > 0}
}

func newTestApp(t *testing.T, fp *fakeProvider) (*App, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	st := store.New(db)
	require.NoError(t, st.EnsureSchema(context.Background()))
	t.Cleanup(func() { st.Close() })

	a := &App{
		Config:   &Config{},
		Provider: fp,
		Store:    st,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return a, db
}

func runLogCount(t *testing.T, db *sql.DB, date string) (count, rows int) {
	t.Helper()
	err := db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(row_count), 0) FROM ingestion_logs WHERE ingestion_date = $1`, date,
	).Scan(&count, &rows)
	require.NoError(t, err)
	return count, rows
}

func TestIngestPersistsAndLogsRun(t *testing.T) {
	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(raw("AAPL", 224.3), raw("MSFT", 443.1)),
	}}
	a, db := newTestApp(t, fp)

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))

	bars, err := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "AAPL", bars[0].Ticker)
	assert.Equal(t, "2025-01-24", bars[0].TradingDate)

	count, rows := runLogCount(t, db, "2025-01-24")
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, rows)
}

func TestIngestNoTradingActivity(t *testing.T) {
	fp := &fakeProvider{} // every date reports no data
	a, db := newTestApp(t, fp)

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))

	bars, err := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, err)
	assert.Empty(t, bars)

	count, rows := runLogCount(t, db, "2025-01-24")
	assert.Equal(t, 1, count)
	assert.Zero(t, rows)
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(raw("AAPL", 224.3)),
	}}
	a, _ := newTestApp(t, fp)

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))
	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))
	assert.Equal(t, 2, fp.calls)

	bars, err := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 224.3, bars[0].Close)
}

func TestIngestCountsRejectedRecords(t *testing.T) {
	broken := raw("BRK", 10)
	broken.Close = nil

	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(raw("AAPL", 224.3), broken),
	}}
	a, _ := newTestApp(t, fp)

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))

	bars, err := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "AAPL", bars[0].Ticker)
}

func TestIngestDuplicateTickerInSnapshot(t *testing.T) {
	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(raw("AAPL", 220.0), raw("MSFT", 443.1), raw("AAPL", 224.3)),
	}}
	a, _ := newTestApp(t, fp)

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))

	bars, err := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	for _, b := range bars {
		if b.Ticker == "AAPL" {
			assert.Equal(t, 224.3, b.Close)
		}
	}
}

func TestIngestFailsWhenEntireBatchMalformed(t *testing.T) {
	broken := raw("BRK", 10)
	broken.Close = nil

	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(broken),
	}}
	a, _ := newTestApp(t, fp)

	err := a.Ingest(context.Background(), "2025-01-24")
	require.Error(t, err)

	bars, qerr := a.Store.DailyBars(context.Background(), "2025-01-24")
	require.NoError(t, qerr)
	assert.Empty(t, bars)
}

func TestIngestPropagatesFetchError(t *testing.T) {
	fp := &fakeProvider{err: &polygon.FetchError{Kind: polygon.KindRateLimited, Date: "2025-01-24", Err: errors.New("429")}}
	a, db := newTestApp(t, fp)

	err := a.Ingest(context.Background(), "2025-01-24")
	require.Error(t, err)

	var fe *polygon.FetchError
	assert.True(t, errors.As(err, &fe))

	count, _ := runLogCount(t, db, "2025-01-24")
	assert.Zero(t, count)
}

func TestTransformNoPredecessorIsNoop(t *testing.T) {
	a, _ := newTestApp(t, &fakeProvider{})
	assert.NoError(t, a.Transform(context.Background(), "2025-01-24"))
}

func TestTransformComputesReturnsEndToEnd(t *testing.T) {
	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-23": snapshot(raw("X", 100), raw("Z", 80)),
		"2025-01-24": snapshot(raw("X", 110), raw("Y", 50)),
	}}
	a, _ := newTestApp(t, fp)
	ctx := context.Background()

	require.NoError(t, a.Ingest(ctx, "2025-01-23"))
	require.NoError(t, a.Ingest(ctx, "2025-01-24"))
	require.NoError(t, a.Transform(ctx, "2025-01-24"))

	bars, err := a.Store.DailyBars(ctx, "2025-01-24")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	byTicker := map[string]*float64{}
	for _, b := range bars {
		byTicker[b.Ticker] = b.DailyReturn
	}
	require.NotNil(t, byTicker["X"])
	assert.InDelta(t, 0.10, *byTicker["X"], 1e-9)
	assert.Nil(t, byTicker["Y"]) // absent on the previous date
}

func TestIngestWritesSnapshot(t *testing.T) {
	fp := &fakeProvider{snapshots: map[string]*provider.GroupedSnapshot{
		"2025-01-24": snapshot(raw("AAPL", 224.3)),
	}}
	a, _ := newTestApp(t, fp)
	dir := t.TempDir()
	a.Config.SnapshotDir = dir
	a.Saver = saver.CSVSaver{}

	require.NoError(t, a.Ingest(context.Background(), "2025-01-24"))

	data, err := os.ReadFile(filepath.Join(dir, "bars_2025-01-24.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "AAPL,2025-01-24,")
}
