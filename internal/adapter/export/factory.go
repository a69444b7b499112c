package export

import (
	"fmt"
	"strings"

	"barflow/internal/domain/port"
)

// NewSeriesWriter picks a writer by format: csv, json or parquet.
func NewSeriesWriter(format string) (port.SeriesWriter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVWriter{}, nil
	case "json":
		return JSONWriter{}, nil
	case "parquet":
		return ParquetWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use: csv, json, parquet)", format)
	}
}
