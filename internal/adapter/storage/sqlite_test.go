package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barflow/internal/domain/model"
	"barflow/internal/infrastructure/config"
)

func newSQLite(t *testing.T) *SQLiteAdapter {
	t.Helper()
	a, err := NewSQLiteAdapter(context.Background(), SQLiteOptions{
		Path:         filepath.Join(t.TempDir(), "nested", "bars.db"),
		WriteTimeout: 5 * time.Second,
		QueryTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func recentBars(n int) []model.Bar {
	base := time.Now().UTC().Truncate(time.Minute).Add(-time.Duration(n) * time.Minute)
	bars := make([]model.Bar, n)
	for i := range bars {
		f := float64(i)
		bars[i] = model.Bar{
			Time: base.Add(time.Duration(i) * time.Minute),
			Open: 100 + f, High: 101 + f, Low: 99 + f, Close: 100.5 + f, Volume: 1000 * (f + 1),
		}
	}
	return bars
}

func TestSQLiteRoundTrip(t *testing.T) {
	a := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, a.Ping(ctx))

	bars := recentBars(3)
	// write out of order, read back oldest first
	shuffled := []model.Bar{bars[2], bars[0], bars[1]}
	require.NoError(t, a.WritePoints(ctx, model.PointsFromBars("AAPL", shuffled)))
	require.NoError(t, a.WritePoints(ctx, model.PointsFromBars("MSFT", recentBars(2))))

	rows, err := a.QueryRange(ctx, "AAPL", model.MustParseRange("-1h"))
	require.NoError(t, err)

	want := make([]model.SeriesRow, len(bars))
	for i, b := range bars {
		want[i] = model.SeriesRow{Time: b.Time, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteRewriteReplacesBar(t *testing.T) {
	a := newSQLite(t)
	ctx := context.Background()

	bar := recentBars(1)[0]
	require.NoError(t, a.WritePoints(ctx, model.PointsFromBars("AAPL", []model.Bar{bar})))

	bar.Close = 42
	require.NoError(t, a.WritePoints(ctx, model.PointsFromBars("AAPL", []model.Bar{bar})))

	rows, err := a.QueryRange(ctx, "AAPL", model.MustParseRange(""))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 42.0, rows[0].Close)
}

func TestSQLiteRangeFilter(t *testing.T) {
	a := newSQLite(t)
	ctx := context.Background()

	old := model.Bar{Time: time.Now().UTC().Add(-48 * time.Hour), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
	fresh := recentBars(1)[0]
	require.NoError(t, a.WritePoints(ctx, model.PointsFromBars("AAPL", []model.Bar{old, fresh})))

	rows, err := a.QueryRange(ctx, "AAPL", model.MustParseRange("-1d"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.Time, rows[0].Time)

	rows, err = a.QueryRange(ctx, "AAPL", model.MustParseRange(old.Time.Add(-time.Minute).Format(time.RFC3339)))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSQLiteEmptyResult(t *testing.T) {
	a := newSQLite(t)

	rows, err := a.QueryRange(context.Background(), "NOPE", model.MustParseRange("-7d"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	assert.NoError(t, a.WritePoints(context.Background(), nil))
}

func TestSQLiteMalformedRow(t *testing.T) {
	a := newSQLite(t)
	ts := time.Now().UTC().Add(-time.Minute)

	_, err := a.db.Exec(`INSERT INTO ohlcv (symbol, time, open, high, low, close, volume) VALUES (?, ?, ?, NULL, ?, ?, NULL)`,
		"AAPL", ts.UnixNano(), 1.0, 0.5, 1.5)
	require.NoError(t, err)

	_, err = a.QueryRange(context.Background(), "AAPL", model.MustParseRange("-1h"))
	var malformed *model.MalformedRowError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, []string{"high", "volume"}, malformed.Missing)
}

func TestSQLiteWriteFailure(t *testing.T) {
	a := newSQLite(t)
	require.NoError(t, a.Close())

	err := a.WritePoints(context.Background(), model.PointsFromBars("AAPL", recentBars(2)))
	var writeErr *model.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "AAPL", writeErr.Symbol)
	assert.Equal(t, 2, writeErr.Count)

	_, err = a.QueryRange(context.Background(), "AAPL", model.MustParseRange("-1h"))
	var queryErr *model.QueryError
	assert.True(t, errors.As(err, &queryErr))
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverSQLite
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "bars.db")

	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.IsType(t, &SQLiteAdapter{}, store)

	cfg.Store.Driver = "csv"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
