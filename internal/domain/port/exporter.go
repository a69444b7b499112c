package port

import "barflow/internal/domain/model"

// SeriesWriter persists a queried series to a file.
type SeriesWriter interface {
	Write(rows []model.SeriesRow, path string) error
	Extension() string
}
