package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barflow/internal/adapter/gateway"
	"barflow/internal/domain/model"
	"barflow/internal/infrastructure/logger"
)

var fixedNow = time.Date(2024, 3, 4, 20, 0, 30, 0, time.UTC)

func newGenerator() *TestGenerator {
	return NewTestGenerator([]string{"AAPL", "MSFT"}, logger.Discard()).
		WithClock(func() time.Time { return fixedNow })
}

func TestGeneratorBars(t *testing.T) {
	g := newGenerator()
	ctx := context.Background()
	require.NoError(t, g.Connect(ctx))
	assert.True(t, g.IsConnected())
	assert.Equal(t, "test", g.Name())

	bars, err := g.FetchHistoricalBars(ctx, "AAPL", model.HistoryRequest{Duration: "1 D", BarSize: "5 mins"})
	require.NoError(t, err)
	require.Len(t, bars, 288)

	assert.Equal(t, time.Date(2024, 3, 4, 19, 55, 0, 0, time.UTC), bars[len(bars)-1].Time)
	for i, b := range bars {
		assert.LessOrEqual(t, b.Low, b.Open)
		assert.LessOrEqual(t, b.Low, b.Close)
		assert.GreaterOrEqual(t, b.High, b.Open)
		assert.GreaterOrEqual(t, b.High, b.Close)
		assert.Positive(t, b.Volume)
		if i > 0 {
			assert.Equal(t, 5*time.Minute, b.Time.Sub(bars[i-1].Time))
		}
	}

	again, err := g.FetchHistoricalBars(ctx, "AAPL", model.HistoryRequest{Duration: "1 D", BarSize: "5 mins"})
	require.NoError(t, err)
	assert.Equal(t, bars, again)

	other, err := g.FetchHistoricalBars(ctx, "MSFT", model.HistoryRequest{Duration: "1 D", BarSize: "5 mins"})
	require.NoError(t, err)
	assert.NotEqual(t, bars[0].Open, other[0].Open)

	require.NoError(t, g.Disconnect(ctx))
	assert.False(t, g.IsConnected())
}

func TestGeneratorErrors(t *testing.T) {
	g := newGenerator()
	ctx := context.Background()

	_, err := g.FetchHistoricalBars(ctx, "AAPL", model.HistoryRequest{Duration: "1 D", BarSize: "1 min"})
	assert.ErrorIs(t, err, gateway.ErrNotConnected)

	require.NoError(t, g.Connect(ctx))

	_, err = g.FetchHistoricalBars(ctx, "BADSYM", model.HistoryRequest{Duration: "1 D", BarSize: "1 min"})
	var resErr *model.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "BADSYM", resErr.Symbol)

	_, err = g.FetchHistoricalBars(ctx, "AAPL", model.HistoryRequest{Duration: "1 D", BarSize: "30 secs"})
	var gwErr *model.GatewayError
	assert.True(t, errors.As(err, &gwErr))
}
