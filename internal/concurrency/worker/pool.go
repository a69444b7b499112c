package worker

import (
	"context"
	"log/slog"

	"barflow/internal/concurrency/fanin"
	"barflow/internal/concurrency/fanout"
	"barflow/internal/domain/model"
)

// Processor runs one job on behalf of worker slot. Slots are stable for the life
// of a pool run, so a slot can own an exclusive resource such as a gateway session.
type Processor func(ctx context.Context, slot int, job model.IngestJob) model.SymbolResult

// Pool runs ingestion jobs on a fixed number of workers.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a pool; fewer than one worker means one.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		logger:  logger,
	}
}

func (p *Pool) Workers() int { return p.workers }

// Start fans jobs out to the workers and returns the merged outcomes. Worker i
// receives jobs i, i+n, i+2n... and processes them one at a time. The returned
// channel closes when in is drained and every worker has finished.
//
// Cancelling ctx stops dealing out new jobs, but every job a worker already
// picked up still reports its outcome, so the caller must drain the channel.
func (p *Pool) Start(ctx context.Context, in <-chan model.IngestJob, process Processor) <-chan model.IngestOutcome {
	lanes := fanout.FanOut(ctx, in, p.workers)

	results := make([]<-chan model.IngestOutcome, len(lanes))
	for slot, lane := range lanes {
		results[slot] = p.runWorker(ctx, slot, lane, process)
	}

	return fanin.FanIn(context.WithoutCancel(ctx), results...)
}

func (p *Pool) runWorker(ctx context.Context, slot int, in <-chan model.IngestJob, process Processor) <-chan model.IngestOutcome {
	out := make(chan model.IngestOutcome)

	go func() {
		defer close(out)
		for job := range in {
			res := process(ctx, slot, job)
			p.logger.Debug("worker: job done", "worker", slot, "symbol", job.Symbol, "ok", res.OK())

			out <- model.IngestOutcome{Job: job, Result: res}
		}
	}()

	return out
}
