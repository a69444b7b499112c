package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barflow/internal/adapter/cache"
	"barflow/internal/domain/model"
	"barflow/internal/infrastructure/logger"
)

type stubStore struct {
	rows    map[string][]model.SeriesRow
	err     error
	queries int
	starts  []string
}

func (s *stubStore) WritePoints(ctx context.Context, points []model.Point) error { return nil }

func (s *stubStore) QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	s.queries++
	s.starts = append(s.starts, start.String())
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[symbol], nil
}

func (s *stubStore) Ping(ctx context.Context) error { return nil }
func (s *stubStore) Close() error                   { return nil }

func rowsFixture() []model.SeriesRow {
	ts := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	return []model.SeriesRow{
		{Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Time: ts.Add(time.Minute), Open: 1.5, High: 2, Low: 1, Close: 1.75, Volume: 50},
	}
}

func TestGetSeriesWithoutCache(t *testing.T) {
	store := &stubStore{rows: map[string][]model.SeriesRow{"AAPL": rowsFixture()}}
	uc := NewSeriesUseCase(store, nil, model.Symbols(), logger.Discard())

	rows, err := uc.GetSeries(context.Background(), "AAPL", "")
	require.NoError(t, err)
	assert.Equal(t, rowsFixture(), rows)
	assert.Equal(t, []string{"-7d"}, store.starts)

	rows, err = uc.GetSeries(context.Background(), "NOPE", "-1h")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetSeriesCacheFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter(context.Background(), mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	store := &stubStore{rows: map[string][]model.SeriesRow{"AAPL": rowsFixture()}}
	uc := NewSeriesUseCase(store, c, model.Symbols(), logger.Discard())

	first, err := uc.GetSeries(context.Background(), "AAPL", "-7d")
	require.NoError(t, err)
	assert.True(t, mr.Exists("series:AAPL:-7d"))

	second, err := uc.GetSeries(context.Background(), "AAPL", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.queries, "second read is served from cache")

	require.NoError(t, c.InvalidateSymbol(context.Background(), "AAPL"))
	_, err = uc.GetSeries(context.Background(), "AAPL", "-7d")
	require.NoError(t, err)
	assert.Equal(t, 2, store.queries)
}

func TestGetSeriesCacheDownFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter(context.Background(), mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	mr.Close()

	store := &stubStore{rows: map[string][]model.SeriesRow{"AAPL": rowsFixture()}}
	uc := NewSeriesUseCase(store, c, model.Symbols(), logger.Discard())

	rows, err := uc.GetSeries(context.Background(), "AAPL", "-7d")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGetSeriesErrors(t *testing.T) {
	store := &stubStore{err: &model.QueryError{Symbol: "AAPL", Err: errors.New("unauthorized")}}
	uc := NewSeriesUseCase(store, nil, model.Symbols(), logger.Discard())

	_, err := uc.GetSeries(context.Background(), "AAPL", "-7d")
	var qe *model.QueryError
	require.True(t, errors.As(err, &qe))
	assert.ErrorContains(t, err, "unauthorized")

	_, err = uc.GetSeries(context.Background(), "AAPL", "tomorrow")
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 1, store.queries, "a bad range never reaches the store")
}

func TestListSymbols(t *testing.T) {
	uc := NewSeriesUseCase(&stubStore{}, nil, model.Symbols(), logger.Discard())

	opts := uc.ListSymbols()
	require.Len(t, opts, 20)
	for i, sym := range model.Symbols() {
		assert.Equal(t, model.SymbolOption{Value: sym, Label: sym}, opts[i])
	}
}
