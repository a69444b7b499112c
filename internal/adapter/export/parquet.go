package export

import (
	"github.com/parquet-go/parquet-go"

	"barflow/internal/domain/model"
)

type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) Write(rows []model.SeriesRow, path string) error {
	return parquet.WriteFile(path, rows)
}
