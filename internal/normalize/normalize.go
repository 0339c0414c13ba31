// Package normalize maps provider-native grouped bar records to canonical
// model.Bar values. A record missing any required field is rejected and
// counted, never inserted with nulls.
package normalize

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"us-daily-bars/internal/model"
	"us-daily-bars/internal/provider/polygon"
)

var validate = validator.New()

// Record converts one raw grouped entry to a Bar, attaching date as the
// trading date (the provider does not echo the date per record).
// Pure: no I/O, no side effects.
func Record(raw polygon.GroupedBarRaw, date string) (model.Bar, error) {
	if err := validate.Struct(raw); err != nil {
		return model.Bar{}, fmt.Errorf("record %q: %w", raw.Ticker, err)
	}
	return model.Bar{
		Ticker:      raw.Ticker,
		TradingDate: date,
		Open:        *raw.Open,
		High:        *raw.High,
		Low:         *raw.Low,
		Close:       *raw.Close,
		Volume:      raw.Volume.Int64(),
	}, nil
}

// Batch normalizes all results for date and returns canonical bars plus the
// count of records dropped, either rejected by validation or superseded by a
// later record for the same ticker. A snapshot must yield at most one bar per
// ticker; the upsert updates each (ticker, date) row once per statement.
func Batch(results []polygon.GroupedBarRaw, date string) ([]model.Bar, int) {
	bars := make([]model.Bar, 0, len(results))
	seen := make(map[string]int, len(results))
	dropped := 0
	for _, raw := range results {
		bar, err := Record(raw, date)
		if err != nil {
			dropped++
			continue
		}
		if i, ok := seen[bar.Ticker]; ok {
			bars[i] = bar
			dropped++
			continue
		}
		seen[bar.Ticker] = len(bars)
		bars = append(bars, bar)
	}
	return bars, dropped
}
