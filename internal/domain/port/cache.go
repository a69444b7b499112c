package port

import (
	"context"

	"barflow/internal/domain/model"
)

// CachePort caches query results per symbol and range expression.
type CachePort interface {
	// GetSeries returns ok=false on a miss.
	GetSeries(ctx context.Context, symbol, rangeExpr string) (rows []model.SeriesRow, ok bool, err error)
	SetSeries(ctx context.Context, symbol, rangeExpr string, rows []model.SeriesRow) error
	InvalidateSymbol(ctx context.Context, symbol string) error
	Ping(ctx context.Context) error
	Close() error
}
