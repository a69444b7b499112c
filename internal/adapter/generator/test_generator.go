package generator

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"barflow/internal/adapter/gateway"
	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// maxBars caps a single synthetic pull.
const maxBars = 20000

// TestGenerator is a synthetic gateway. It serves a deterministic random walk per
// symbol so test-mode ingestion runs without a brokerage session.
type TestGenerator struct {
	universe  map[string]struct{}
	log       *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	connected bool
}

var _ port.GatewayPort = (*TestGenerator)(nil)

// NewTestGenerator serves bars for symbols; any other symbol fails resolution.
func NewTestGenerator(symbols []string, log *slog.Logger) *TestGenerator {
	universe := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		universe[s] = struct{}{}
	}
	return &TestGenerator{
		universe: universe,
		log:      log.With("gateway", "test"),
		now:      time.Now,
	}
}

// WithClock pins the generator's notion of now.
func (g *TestGenerator) WithClock(now func() time.Time) *TestGenerator {
	g.now = now
	return g
}

func (g *TestGenerator) Name() string { return "test" }

func (g *TestGenerator) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = true
	return nil
}

func (g *TestGenerator) Disconnect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
	return nil
}

func (g *TestGenerator) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

// FetchHistoricalBars returns bars ending at the last whole interval before now.
// The same symbol, request and clock always produce the same series.
func (g *TestGenerator) FetchHistoricalBars(ctx context.Context, symbol string, req model.HistoryRequest) ([]model.Bar, error) {
	if !g.IsConnected() {
		return nil, &model.GatewayError{Op: "fetch", Err: gateway.ErrNotConnected}
	}
	if _, ok := g.universe[symbol]; !ok {
		return nil, &model.ResolutionError{Symbol: symbol, Reason: "not in synthetic universe"}
	}

	span, err := gateway.Span(req.Duration)
	if err != nil {
		return nil, &model.GatewayError{Op: "fetch", Err: err}
	}
	interval, err := gateway.Interval(req.BarSize)
	if err != nil {
		return nil, &model.GatewayError{Op: "fetch", Err: err}
	}

	n := int(span / interval)
	if n > maxBars {
		n = maxBars
	}
	if n < 1 {
		n = 1
	}

	end := g.now().UTC().Truncate(interval)
	start := end.Add(-time.Duration(n) * interval)

	seed := seedFor(symbol)
	r := rand.New(rand.NewSource(seed))
	price := 20 + float64(seed%480)

	bars := make([]model.Bar, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &model.GatewayError{Op: "fetch", Err: err}
		}

		open := price
		closePrice := math.Max(0.01, open*(1+r.NormFloat64()*0.002))
		high := math.Max(open, closePrice) * (1 + math.Abs(r.NormFloat64())*0.001)
		low := math.Min(open, closePrice) * (1 - math.Abs(r.NormFloat64())*0.001)

		bars = append(bars, model.Bar{
			Time:   start.Add(time.Duration(i) * interval),
			Open:   cents(open),
			High:   cents(high),
			Low:    cents(low),
			Close:  cents(closePrice),
			Volume: float64(100 + r.Intn(50000)),
		})
		price = closePrice
	}

	g.log.Debug("synthetic bars generated", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

func seedFor(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return int64(h.Sum64() >> 1)
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
