// Package app builds the object graph for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"barflow/internal/adapter/cache"
	"barflow/internal/adapter/gateway"
	"barflow/internal/adapter/generator"
	"barflow/internal/adapter/handler"
	"barflow/internal/adapter/storage"
	"barflow/internal/application/service"
	"barflow/internal/application/usecase"
	"barflow/internal/concurrency/worker"
	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
	"barflow/internal/infrastructure/config"
	"barflow/internal/infrastructure/metrics"
	"barflow/internal/infrastructure/server"
)

// App is the long-running service: web API plus scheduled ingestion.
type App struct {
	Config    *config.Config
	Server    *server.Server
	Scheduler *service.Scheduler
	Ingestion *service.IngestionService
}

// Ingest is the one-shot ingestion command.
type Ingest struct {
	Ingestion *service.IngestionService
}

// Export reads stored series for the export command.
type Export struct {
	Series *usecase.SeriesUseCase
}

// ProvideMetrics creates the collector set.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New()
}

// ProvideStorage opens the configured store. The cleanup closes it.
func ProvideStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (port.StoragePort, func(), error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	log.Info("store ready", "driver", cfg.Store.Driver)

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}
	return store, cleanup, nil
}

// ProvideCache connects to Redis when enabled. A disabled cache is a nil
// CachePort, never a typed nil.
func ProvideCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (port.CachePort, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	rc, err := cache.NewRedisAdapter(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr(), err)
	}
	log.Info("cache ready", "addr", cfg.RedisAddr(), "ttl", cfg.Redis.TTL)

	cleanup := func() {
		if err := rc.Close(); err != nil {
			log.Error("failed to close cache", "error", err)
		}
	}
	return rc, cleanup, nil
}

// ProvideModeService starts in the configured data mode.
func ProvideModeService(cfg *config.Config, log *slog.Logger) (*service.ModeService, error) {
	mode, err := model.ParseDataMode(cfg.Ingest.Mode)
	if err != nil {
		return nil, err
	}
	return service.NewModeService(mode, log), nil
}

func ibkrConfig(cfg *config.Config) gateway.IBKRConfig {
	return gateway.IBKRConfig{
		BaseURL:            cfg.GatewayURL(),
		ClientID:           cfg.Gateway.ClientID,
		Exchange:           cfg.Gateway.Exchange,
		Currency:           cfg.Gateway.Currency,
		CallTimeout:        cfg.Gateway.CallTimeout,
		InsecureSkipVerify: cfg.Gateway.InsecureSkipVerify,
	}
}

// ProvideGatewayFactory opens a fresh gateway per symbol. Live sessions for
// slot i use client id ClientID+i, tracked in one registry shared by all slots.
func ProvideGatewayFactory(cfg *config.Config, log *slog.Logger) port.GatewayFactory {
	base := ibkrConfig(cfg)
	base.Sessions = gateway.NewSessionRegistry()
	symbols := append([]string(nil), cfg.Symbols...)

	return func(mode model.DataMode, slot int) (port.GatewayPort, error) {
		switch mode {
		case model.LiveMode:
			c := base
			c.ClientID += slot
			return gateway.NewIBKRClient(c, log), nil
		case model.TestMode:
			return generator.NewTestGenerator(symbols, log), nil
		default:
			return nil, fmt.Errorf("no gateway for mode %s", mode)
		}
	}
}

func ProvidePool(cfg *config.Config, log *slog.Logger) *worker.Pool {
	return worker.NewPool(cfg.Ingest.Workers, log)
}

func ProvideIngestionService(
	gateways port.GatewayFactory,
	store port.StoragePort,
	c port.CachePort,
	modes *service.ModeService,
	pool *worker.Pool,
	m *metrics.Metrics,
	cfg *config.Config,
	log *slog.Logger,
) *service.IngestionService {
	opts := service.IngestionOptions{
		Symbols: cfg.Symbols,
		Request: model.HistoryRequest{Duration: cfg.Ingest.Duration, BarSize: cfg.Ingest.BarSize},
	}
	if cfg.Gateway.LogoutAfterRun {
		opts.AfterRun = logoutAfterLiveRun(cfg, log)
	}
	return service.NewIngestionService(gateways, store, c, modes, pool, m, opts, log)
}

// logoutAfterLiveRun ends the brokerage login once all symbols of a live run
// are done. Logging out per symbol would leave later symbols unauthenticated.
func logoutAfterLiveRun(cfg *config.Config, log *slog.Logger) func(context.Context, model.DataMode) error {
	return func(ctx context.Context, mode model.DataMode) error {
		if mode != model.LiveMode {
			return nil
		}
		return gateway.NewIBKRClient(ibkrConfig(cfg), log).Logout(ctx)
	}
}

func ProvideSeriesUseCase(store port.StoragePort, c port.CachePort, cfg *config.Config, log *slog.Logger) *usecase.SeriesUseCase {
	return usecase.NewSeriesUseCase(store, c, cfg.Symbols, log)
}

func ProvideScheduler(svc *service.IngestionService, cfg *config.Config, log *slog.Logger) *service.Scheduler {
	return service.NewScheduler(svc, cfg.Ingest.Cron, cfg.Ingest.RunOnStart, log)
}

// ProvideRouter mounts every handler. Runs triggered over HTTP use ctx, so they
// end with the process rather than the request.
func ProvideRouter(
	ctx context.Context,
	series *usecase.SeriesUseCase,
	ingestion *service.IngestionService,
	modes *service.ModeService,
	store port.StoragePort,
	c port.CachePort,
	m *metrics.Metrics,
	cfg *config.Config,
	log *slog.Logger,
) http.Handler {
	return handler.NewRouter(handler.Handlers{
		Series:    handler.NewSeriesHandler(series, log),
		Health:    handler.NewHealthHandler(store, c, log),
		Mode:      handler.NewModeHandler(modes, log),
		Ingest:    handler.NewIngestHandler(ctx, ingestion, log),
		Dashboard: handler.NewDashboardHandler(cfg.Dashboard.GrafanaURL, log),
	}, m, log)
}

func ProvideServer(cfg *config.Config, h http.Handler, log *slog.Logger) *server.Server {
	return server.NewServer(server.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, h, log)
}
