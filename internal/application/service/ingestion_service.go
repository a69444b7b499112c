package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"barflow/internal/concurrency/worker"
	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
	"barflow/internal/infrastructure/metrics"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// IngestionService pulls bars from the gateway into the store, one
// connect/fetch/write/disconnect cycle per symbol.
type IngestionService struct {
	gateways port.GatewayFactory
	storage  port.StoragePort
	cache    port.CachePort
	modes    *ModeService
	pool     *worker.Pool
	metrics  *metrics.Metrics
	logger   *slog.Logger

	symbols  []string
	request  model.HistoryRequest
	afterRun func(ctx context.Context, mode model.DataMode) error

	running atomic.Bool
	mu      sync.RWMutex
	last    *model.IngestReport
}

// IngestionOptions carries the per-run settings.
type IngestionOptions struct {
	Symbols []string
	Request model.HistoryRequest
	// AfterRun, when set, runs once after every symbol of a run has finished,
	// e.g. to end the brokerage login. Its error is logged.
	AfterRun func(ctx context.Context, mode model.DataMode) error
}

// NewIngestionService wires the pipeline. cache and m may be nil.
func NewIngestionService(
	gateways port.GatewayFactory,
	storage port.StoragePort,
	cache port.CachePort,
	modes *ModeService,
	pool *worker.Pool,
	m *metrics.Metrics,
	opts IngestionOptions,
	logger *slog.Logger,
) *IngestionService {
	if opts.Request.Duration == "" {
		opts.Request.Duration = model.DefaultDuration
	}
	if opts.Request.BarSize == "" {
		opts.Request.BarSize = model.DefaultBarSize
	}
	return &IngestionService{
		gateways: gateways,
		storage:  storage,
		cache:    cache,
		modes:    modes,
		pool:     pool,
		metrics:  m,
		logger:   logger.With("component", "ingestion"),
		symbols:  append([]string(nil), opts.Symbols...),
		request:  opts.Request,
		afterRun: opts.AfterRun,
	}
}

// Symbols returns the symbols every run iterates, in order.
func (s *IngestionService) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// Running reports whether a run is active.
func (s *IngestionService) Running() bool {
	return s.running.Load()
}

// LastReport returns the most recent finished run, or nil.
func (s *IngestionService) LastReport() *model.IngestReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// IngestSymbol runs the full cycle for one symbol on gw. The gateway is
// disconnected exactly once before returning, whatever failed.
func (s *IngestionService) IngestSymbol(ctx context.Context, gw port.GatewayPort, symbol string) (res model.SymbolResult) {
	started := time.Now()
	res.Symbol = symbol
	log := s.logger.With("symbol", symbol, "gateway", gw.Name())

	defer func() {
		if err := gw.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Error("disconnect failed", "error", err)
			s.recordFailure(symbol, metrics.StageDisconnect)
			res.Err = errors.Join(res.Err, err)
		}
		res.Elapsed = time.Since(started)
	}()

	if err := gw.Connect(ctx); err != nil {
		log.Error("connect failed", "error", err)
		s.recordFailure(symbol, metrics.StageConnect)
		res.Err = err
		return res
	}

	bars, err := gw.FetchHistoricalBars(ctx, symbol, s.request)
	if err != nil {
		log.Error("fetch failed", "error", err)
		s.recordFailure(symbol, metrics.StageFetch)
		res.Err = err
		return res
	}
	res.Bars = len(bars)
	if s.metrics != nil {
		s.metrics.BarsFetched.WithLabelValues(symbol).Add(float64(len(bars)))
	}

	points := model.PointsFromBars(symbol, bars)
	if len(points) == 0 {
		log.Warn("gateway returned no bars")
		return res
	}

	if err := s.storage.WritePoints(ctx, points); err != nil {
		log.Error("write failed", "points", len(points), "error", err)
		s.recordFailure(symbol, metrics.StageWrite)
		res.Err = err
		return res
	}
	res.Written = len(points)
	if s.metrics != nil {
		s.metrics.PointsWritten.WithLabelValues(symbol).Add(float64(len(points)))
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSymbol(ctx, symbol); err != nil {
			log.Warn("cache invalidation failed", "error", err)
		}
	}

	log.Info("symbol ingested", "bars", len(bars), "written", len(points))
	return res
}

// Run ingests every symbol and blocks until the pass is over. A failing symbol
// never stops the ones after it.
func (s *IngestionService) Run(ctx context.Context) (*model.IngestReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.run(ctx, uuid.NewString())
}

// Trigger starts a run in the background and returns its id.
func (s *IngestionService) Trigger(ctx context.Context) (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}

	runID := uuid.NewString()
	go func() {
		defer s.running.Store(false)
		if _, err := s.run(ctx, runID); err != nil {
			s.logger.Error("triggered run failed", "run_id", runID, "error", err)
		}
	}()
	return runID, nil
}

func (s *IngestionService) run(ctx context.Context, runID string) (*model.IngestReport, error) {
	mode := s.modes.GetCurrentMode()
	report := &model.IngestReport{
		RunID:   runID,
		Mode:    mode,
		Started: time.Now().UTC(),
		Results: make([]model.SymbolResult, len(s.symbols)),
	}
	log := s.logger.With("run_id", runID, "mode", mode.String())
	log.Info("ingestion run starting", "symbols", len(s.symbols), "workers", s.pool.Workers(),
		"duration", s.request.Duration, "bar_size", s.request.BarSize)

	jobs := make(chan model.IngestJob)
	go func() {
		defer close(jobs)
		for i, symbol := range s.symbols {
			select {
			case <-ctx.Done():
				return
			case jobs <- model.IngestJob{Seq: i, Symbol: symbol}:
			}
		}
	}()

	process := func(ctx context.Context, slot int, job model.IngestJob) model.SymbolResult {
		gw, err := s.gateways(mode, slot)
		if err != nil {
			s.recordFailure(job.Symbol, metrics.StageConnect)
			return model.SymbolResult{Symbol: job.Symbol, Err: fmt.Errorf("open gateway: %w", err)}
		}
		return s.IngestSymbol(ctx, gw, job.Symbol)
	}

	done := make([]bool, len(s.symbols))
	for outcome := range s.pool.Start(ctx, jobs, process) {
		report.Results[outcome.Job.Seq] = outcome.Result
		done[outcome.Job.Seq] = true
	}

	for i, ok := range done {
		if !ok {
			report.Results[i] = model.SymbolResult{Symbol: s.symbols[i], Err: context.Cause(ctx)}
		}
	}
	if s.afterRun != nil {
		if err := s.afterRun(context.WithoutCancel(ctx), mode); err != nil {
			log.Error("run teardown failed", "error", err)
		}
	}
	report.Finished = time.Now().UTC()

	failed := report.Failed()
	if s.metrics != nil {
		s.metrics.ObserveRun(report.Started, len(failed))
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	log.Info("ingestion run finished",
		"written", report.Written(),
		"failed", len(failed),
		"failed_symbols", failed,
		"elapsed", report.Finished.Sub(report.Started))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *IngestionService) recordFailure(symbol, stage string) {
	if s.metrics != nil {
		s.metrics.SymbolFailures.WithLabelValues(symbol, stage).Inc()
	}
}
