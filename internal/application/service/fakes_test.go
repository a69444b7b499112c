package service

import (
	"context"
	"sync"
	"time"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// fakeGateway records calls and fails on demand.
type fakeGateway struct {
	mu          sync.Mutex
	connected   bool
	connects    int
	disconnects int
	fetched     []string

	bars          map[string][]model.Bar
	connectErr    error
	fetchErr      map[string]error
	disconnectErr error
	block         chan struct{}
	onFetch       func(symbol string)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{bars: map[string][]model.Bar{}, fetchErr: map[string]error{}}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connects++
	if g.connectErr != nil {
		return g.connectErr
	}
	g.connected = true
	return nil
}

func (g *fakeGateway) Disconnect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disconnects++
	g.connected = false
	return g.disconnectErr
}

func (g *fakeGateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *fakeGateway) FetchHistoricalBars(ctx context.Context, symbol string, req model.HistoryRequest) ([]model.Bar, error) {
	if g.block != nil {
		<-g.block
	}
	if g.onFetch != nil {
		g.onFetch(symbol)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, symbol)
	if err := g.fetchErr[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := g.bars[symbol]; ok {
		return bars, nil
	}
	return sampleBars(2), nil
}

func (g *fakeGateway) counts() (connects, disconnects int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connects, g.disconnects
}

// fakeStore keeps written points per symbol.
type fakeStore struct {
	mu       sync.Mutex
	points   map[string][]model.Point
	writeErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{points: map[string][]model.Point{}, writeErr: map[string]error{}}
}

func (s *fakeStore) WritePoints(ctx context.Context, points []model.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbol := points[0].Symbol()
	if err := s.writeErr[symbol]; err != nil {
		return &model.WriteError{Symbol: symbol, Count: len(points), Err: err}
	}
	s.points[symbol] = append(s.points[symbol], points...)
	return nil
}

func (s *fakeStore) QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	return []model.SeriesRow{}, nil
}

func (s *fakeStore) Ping(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                   { return nil }

func (s *fakeStore) written(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points[symbol])
}

// fakeCache only tracks invalidations.
type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *fakeCache) GetSeries(ctx context.Context, symbol, rangeExpr string) ([]model.SeriesRow, bool, error) {
	return nil, false, nil
}

func (c *fakeCache) SetSeries(ctx context.Context, symbol, rangeExpr string, rows []model.SeriesRow) error {
	return nil
}

func (c *fakeCache) InvalidateSymbol(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, symbol)
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

func sampleBars(n int) []model.Bar {
	base := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		f := float64(i)
		bars[i] = model.Bar{Time: base.Add(time.Duration(i) * time.Minute), Open: 10 + f, High: 11 + f, Low: 9 + f, Close: 10.5 + f, Volume: 100}
	}
	return bars
}

// singleGateway is a factory that always hands out gw.
func singleGateway(gw port.GatewayPort) port.GatewayFactory {
	return func(model.DataMode, int) (port.GatewayPort, error) { return gw, nil }
}
