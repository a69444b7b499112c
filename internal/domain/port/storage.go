package port

import (
	"context"

	"barflow/internal/domain/model"
)

// StoragePort is the time-series store.
type StoragePort interface {
	// WritePoints writes one batch; it either succeeds or returns a *model.WriteError.
	WritePoints(ctx context.Context, points []model.Point) error
	// QueryRange returns rows for symbol since start, oldest first. No data is an
	// empty result, failures are *model.QueryError or *model.MalformedRowError.
	QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error)
	Ping(ctx context.Context) error
	Close() error
}
