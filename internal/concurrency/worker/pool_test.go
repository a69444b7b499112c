package worker

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barflow/internal/domain/model"
	"barflow/internal/infrastructure/logger"
)

func jobs(symbols ...string) <-chan model.IngestJob {
	ch := make(chan model.IngestJob)
	go func() {
		defer close(ch)
		for i, s := range symbols {
			ch <- model.IngestJob{Seq: i, Symbol: s}
		}
	}()
	return ch
}

func TestPoolProcessesEveryJob(t *testing.T) {
	p := NewPool(3, logger.Discard())
	require.Equal(t, 3, p.Workers())

	var mu sync.Mutex
	slots := map[string]int{}

	process := func(ctx context.Context, slot int, job model.IngestJob) model.SymbolResult {
		mu.Lock()
		slots[job.Symbol] = slot
		mu.Unlock()
		return model.SymbolResult{Symbol: job.Symbol, Bars: job.Seq}
	}

	var outcomes []model.IngestOutcome
	for o := range p.Start(context.Background(), jobs("AAPL", "MSFT", "TSLA", "NVDA", "AMD"), process) {
		outcomes = append(outcomes, o)
	}
	require.Len(t, outcomes, 5)

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Job.Seq < outcomes[j].Job.Seq })
	for i, o := range outcomes {
		assert.Equal(t, i, o.Job.Seq)
		assert.Equal(t, o.Job.Symbol, o.Result.Symbol)
	}

	// round-robin assignment pins each symbol to slot seq%3
	assert.Equal(t, map[string]int{"AAPL": 0, "MSFT": 1, "TSLA": 2, "NVDA": 0, "AMD": 1}, slots)
}

func TestPoolSingleWorkerIsSequential(t *testing.T) {
	p := NewPool(0, logger.Discard())
	require.Equal(t, 1, p.Workers())

	var order []string
	process := func(ctx context.Context, slot int, job model.IngestJob) model.SymbolResult {
		assert.Equal(t, 0, slot)
		order = append(order, job.Symbol)
		return model.SymbolResult{Symbol: job.Symbol}
	}

	for range p.Start(context.Background(), jobs("A", "B", "C"), process) {
	}
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestPoolReportsJobFinishedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(2, logger.Discard())
	process := func(ctx context.Context, slot int, job model.IngestJob) model.SymbolResult {
		if job.Symbol == "AAPL" {
			cancel()
		}
		return model.SymbolResult{Symbol: job.Symbol, Written: 1}
	}

	got := map[string]model.SymbolResult{}
	for o := range p.Start(ctx, jobs("AAPL", "MSFT", "TSLA"), process) {
		got[o.Job.Symbol] = o.Result
	}

	require.Contains(t, got, "AAPL")
	assert.True(t, got["AAPL"].OK())
	assert.Equal(t, 1, got["AAPL"].Written)
}
