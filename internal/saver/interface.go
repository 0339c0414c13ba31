package saver

import (
	"strings"

	"us-daily-bars/internal/model"
)

// SnapshotSaver writes one date's normalized bars to a local file as an audit
// copy of what was persisted. The application injects the implementation.
type SnapshotSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// NewSnapshotSaver creates an implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewSnapshotSaver(format string) SnapshotSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
