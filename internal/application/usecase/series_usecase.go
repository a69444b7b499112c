package usecase

import (
	"context"
	"log/slog"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// SeriesUseCase serves stored bars to the API, cache first.
type SeriesUseCase struct {
	storage port.StoragePort
	cache   port.CachePort
	symbols []string
	logger  *slog.Logger
}

// NewSeriesUseCase builds the read path. cache may be nil.
func NewSeriesUseCase(storage port.StoragePort, cache port.CachePort, symbols []string, logger *slog.Logger) *SeriesUseCase {
	return &SeriesUseCase{
		storage: storage,
		cache:   cache,
		symbols: append([]string(nil), symbols...),
		logger:  logger.With("component", "series"),
	}
}

// GetSeries returns the rows of symbol since rangeExpr, oldest first. An empty
// expression means the last 7 days. A symbol with no data yields an empty slice.
func (uc *SeriesUseCase) GetSeries(ctx context.Context, symbol, rangeExpr string) ([]model.SeriesRow, error) {
	start, err := model.ParseRange(rangeExpr)
	if err != nil {
		return nil, &model.QueryError{Symbol: symbol, Err: err}
	}
	key := start.String()

	if uc.cache != nil {
		rows, ok, err := uc.cache.GetSeries(ctx, symbol, key)
		if err != nil {
			uc.logger.Warn("cache read failed, querying store", "symbol", symbol, "range", key, "error", err)
		} else if ok {
			return rows, nil
		}
	}

	rows, err := uc.storage.QueryRange(ctx, symbol, start)
	if err != nil {
		uc.logger.Error("query failed", "symbol", symbol, "range", key, "error", err)
		return nil, err
	}
	if rows == nil {
		rows = []model.SeriesRow{}
	}

	if uc.cache != nil {
		if err := uc.cache.SetSeries(ctx, symbol, key, rows); err != nil {
			uc.logger.Warn("cache write failed", "symbol", symbol, "range", key, "error", err)
		}
	}
	return rows, nil
}

// ListSymbols returns the configured symbols, each labelled with itself.
func (uc *SeriesUseCase) ListSymbols() []model.SymbolOption {
	return model.SymbolOptions(uc.symbols)
}
