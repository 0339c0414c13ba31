package model

import "time"

// DateLayout is the wire format for trading dates (no time component).
const DateLayout = "2006-01-02"

// Bar represents one OHLCV bar for a single ticker and trading date.
// Shared by provider, normalize, store and snapshot serialization (csv, json, parquet).
type Bar struct {
	Ticker      string   `json:"ticker" parquet:"ticker"`
	TradingDate string   `json:"trading_date" parquet:"trading_date"` // YYYY-MM-DD
	Open        float64  `json:"open" parquet:"open"`
	High        float64  `json:"high" parquet:"high"`
	Low         float64  `json:"low" parquet:"low"`
	Close       float64  `json:"close" parquet:"close"`
	Volume      int64    `json:"volume" parquet:"volume"`
	DailyReturn *float64 `json:"daily_return,omitempty" parquet:"daily_return,optional"` // fraction, nil until computed
}

// IngestionRun records one completed ingestion invocation. Append-only.
type IngestionRun struct {
	IngestionDate string
	RowCount      int
	Duration      time.Duration
	LoggedAt      time.Time
}
