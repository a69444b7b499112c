//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"barflow/internal/infrastructure/config"
)

var ingestionSet = wire.NewSet(
	ProvideMetrics,
	ProvideStorage,
	ProvideCache,
	ProvideModeService,
	ProvideGatewayFactory,
	ProvidePool,
	ProvideIngestionService,
)

// InitializeApp builds the server, scheduler and ingestion pipeline.
// The returned cleanup closes the store and the cache.
func InitializeApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, func(), error) {
	wire.Build(
		ingestionSet,
		ProvideSeriesUseCase,
		ProvideScheduler,
		ProvideRouter,
		ProvideServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeIngest builds the pipeline for a single run.
func InitializeIngest(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Ingest, func(), error) {
	wire.Build(
		ingestionSet,
		wire.Struct(new(Ingest), "*"),
	)
	return nil, nil, nil
}

// InitializeExport builds the read path.
func InitializeExport(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Export, func(), error) {
	wire.Build(
		ProvideStorage,
		ProvideCache,
		ProvideSeriesUseCase,
		wire.Struct(new(Export), "*"),
	)
	return nil, nil, nil
}
