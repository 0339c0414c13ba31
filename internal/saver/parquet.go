package saver

import (
	"github.com/parquet-go/parquet-go"

	"us-daily-bars/internal/model"
)

// ParquetSaver writes snapshots as Parquet.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.Bar, path string) error {
	return parquet.WriteFile(path, bars)
}
