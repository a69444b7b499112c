package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"barflow/internal/domain/model"
)

// Runner is the work the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) (*model.IngestReport, error)
}

// cronParser accepts standard five-field specs, an optional leading seconds
// field, and descriptors such as @hourly.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler triggers ingestion runs on a cron spec. A tick that arrives while
// the previous run is still going is skipped.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	spec       string
	runOnStart bool
	logger     *slog.Logger
}

func NewScheduler(runner Runner, spec string, runOnStart bool, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:     runner,
		spec:       spec,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start registers the job and starts the cron loop. Runs use ctx, so cancelling
// it aborts an in-flight run. An empty spec schedules nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec != "" {
		if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx, "cron") }); err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
		}
		s.cron.Start()
		s.logger.Info("scheduler started", "cron", s.spec)
	}

	if s.runOnStart {
		go s.runOnce(ctx, "startup")
	}
	return nil
}

// Stop stops scheduling and waits for a running job to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) runOnce(ctx context.Context, trigger string) {
	report, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("run skipped, previous run still active", "trigger", trigger)
	case err != nil:
		s.logger.Error("scheduled run aborted", "trigger", trigger, "error", err)
	default:
		s.logger.Info("scheduled run complete", "trigger", trigger, "run_id", report.RunID,
			"written", report.Written(), "failed", len(report.Failed()))
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
