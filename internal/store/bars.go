// Package store persists daily bars and ingestion run metadata.
// All queries use $N placeholders and SQL shared by PostgreSQL (production)
// and SQLite (tests).
package store

import (
	"context"
	"database/sql"
	"fmt"

	"us-daily-bars/internal/model"
)

// Store is the database storage layer for daily bars.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the pipeline's tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const upsertBarQuery = `
	INSERT INTO daily_bars (ticker, trading_date, open, high, low, close, volume, daily_return)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
	ON CONFLICT (ticker, trading_date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		daily_return = NULL
`

// UpsertDailyBars writes all bars in a single transaction: all rows visible
// or none. Re-ingesting the same (ticker, trading_date) identities overwrites
// in place and resets daily_return, so a later Transform recomputes it from
// the corrected closes. Returns the count of rows written.
func (s *Store) UpsertDailyBars(ctx context.Context, bars []model.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertBarQuery)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Ticker, b.TradingDate, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("upsert %s %s: %w", b.Ticker, b.TradingDate, err)
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit daily bars: %w", err)
	}
	return len(bars), nil
}

// PrevTradingDate returns the most recent trading date strictly before date
// that has at least one bar. ok is false when no such date exists, which is
// a valid outcome (first-ever ingestion), not an error.
func (s *Store) PrevTradingDate(ctx context.Context, date string) (prev string, ok bool, err error) {
	var v sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT CAST(MAX(trading_date) AS TEXT) FROM daily_bars WHERE trading_date < $1`, date,
	).Scan(&v)
	if err != nil {
		return "", false, fmt.Errorf("previous trading date before %s: %w", date, err)
	}
	if !v.Valid {
		return "", false, nil
	}
	// Postgres may render the cast with a trailing time component depending
	// on the column type; keep the date part only.
	prev = v.String
	if len(prev) > len(model.DateLayout) {
		prev = prev[:len(model.DateLayout)]
	}
	return prev, true, nil
}

const dailyReturnQuery = `
	WITH prev_day AS (
		SELECT ticker, close AS prev_close
		FROM daily_bars
		WHERE trading_date = $1
	)
	UPDATE daily_bars AS db
	SET daily_return = (db.close - pd.prev_close) * 1.0 / pd.prev_close
	FROM prev_day AS pd
	WHERE db.ticker = pd.ticker
	  AND db.trading_date = $2
	  AND pd.prev_close <> 0
`

// ComputeDailyReturns sets daily_return for every ticker present on both
// prevDate and date. Tickers absent on prevDate keep a NULL return (no match,
// not a zero), as do tickers whose previous close is zero. Idempotent:
// re-running overwrites the same values given unchanged inputs.
func (s *Store) ComputeDailyReturns(ctx context.Context, prevDate, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, dailyReturnQuery, prevDate, date)
	if err != nil {
		return 0, fmt.Errorf("update daily returns for %s: %w", date, err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return updated, nil
}

// LogIngestionRun appends one ingestion run record. Best-effort side channel:
// callers report failures but must not fail the run over them.
func (s *Store) LogIngestionRun(ctx context.Context, run model.IngestionRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingestion_logs (ingestion_date, row_count, duration_seconds, logged_at)
		 VALUES ($1, $2, $3, $4)`,
		run.IngestionDate, run.RowCount, run.Duration.Seconds(), run.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("log ingestion run for %s: %w", run.IngestionDate, err)
	}
	return nil
}

// DailyBars reads all bars for one trading date, ordered by ticker.
func (s *Store) DailyBars(ctx context.Context, date string) ([]model.Bar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, CAST(trading_date AS TEXT), open, high, low, close, volume, daily_return
		 FROM daily_bars
		 WHERE trading_date = $1
		 ORDER BY ticker`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily bars for %s: %w", date, err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var ret sql.NullFloat64
		if err := rows.Scan(&b.Ticker, &b.TradingDate, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &ret); err != nil {
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		if len(b.TradingDate) > len(model.DateLayout) {
			b.TradingDate = b.TradingDate[:len(model.DateLayout)]
		}
		if ret.Valid {
			v := ret.Float64
			b.DailyReturn = &v
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily bars: %w", err)
	}
	return bars, nil
}
