package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"barflow/internal/domain/model"
)

// dialect covers what differs between the SQL backends.
type dialect struct {
	name   string
	schema string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// timeArg converts a bar time into the column's storage form.
	timeArg func(t time.Time) any
	// parseTime converts a scanned time column back.
	parseTime func(v any) (time.Time, error)
}

// sqlStore implements the ohlcv table shared by the relational backends. One row
// per (symbol, time); a rewrite of the same bar replaces it.
type sqlStore struct {
	db           *sql.DB
	d            dialect
	writeTimeout time.Duration
	queryTimeout time.Duration
}

func (s *sqlStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.schema); err != nil {
		return fmt.Errorf("failed to init %s schema: %w", s.d.name, err)
	}
	return nil
}

func (s *sqlStore) upsertQuery() string {
	ph := make([]string, 7)
	for i := range ph {
		ph[i] = s.d.placeholder(i + 1)
	}
	return `INSERT INTO ohlcv (symbol, time, open, high, low, close, volume)
	VALUES (` + strings.Join(ph, ", ") + `)
	ON CONFLICT (symbol, time) DO UPDATE SET
		open = excluded.open,
		high = excluded.high,
		low = excluded.low,
		close = excluded.close,
		volume = excluded.volume`
}

// writePoints stores the batch in a single transaction.
func (s *sqlStore) writePoints(ctx context.Context, points []model.Point) error {
	if len(points) == 0 {
		return nil
	}
	symbol := points[0].Symbol()
	fail := func(err error) error {
		return &model.WriteError{Symbol: symbol, Count: len(points), Err: err}
	}

	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.upsertQuery())
	if err != nil {
		return fail(fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	for _, p := range points {
		args := []any{p.Symbol(), s.d.timeArg(p.Time)}
		for _, f := range model.Fields {
			if v, ok := p.Fields[f]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fail(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *sqlStore) queryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT time, open, high, low, close, volume FROM ohlcv
	WHERE symbol = ` + s.d.placeholder(1) + ` AND time >= ` + s.d.placeholder(2) + `
	ORDER BY time ASC`

	rows, err := s.db.QueryContext(ctx, query, symbol, s.d.timeArg(start.Since(time.Now())))
	if err != nil {
		return nil, &model.QueryError{Symbol: symbol, Err: err}
	}
	defer rows.Close()

	out := []model.SeriesRow{}
	for rows.Next() {
		var (
			rawTime any
			vals    [5]sql.NullFloat64
		)
		if err := rows.Scan(&rawTime, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4]); err != nil {
			return nil, &model.QueryError{Symbol: symbol, Err: err}
		}

		t, err := s.d.parseTime(rawTime)
		if err != nil {
			return nil, &model.QueryError{Symbol: symbol, Err: err}
		}

		fields := make(map[string]float64, len(model.Fields))
		for i, f := range model.Fields {
			if vals[i].Valid {
				fields[f] = vals[i].Float64
			}
		}

		row, err := model.RowFromFields(symbol, t, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.QueryError{Symbol: symbol, Err: err}
	}
	return out, nil
}

func (s *sqlStore) ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) close() error {
	return s.db.Close()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func dollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func questionPlaceholder(int) string { return "?" }
