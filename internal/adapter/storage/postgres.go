package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ohlcv (
	symbol VARCHAR(16) NOT NULL,
	time TIMESTAMPTZ NOT NULL,
	open DOUBLE PRECISION,
	high DOUBLE PRECISION,
	low DOUBLE PRECISION,
	close DOUBLE PRECISION,
	volume DOUBLE PRECISION,
	PRIMARY KEY (symbol, time)
);
CREATE INDEX IF NOT EXISTS idx_ohlcv_time ON ohlcv(time);
`

// PostgresOptions configures the PostgreSQL pool.
type PostgresOptions struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	WriteTimeout    time.Duration
	QueryTimeout    time.Duration
}

type PostgresAdapter struct {
	sqlStore
}

var _ port.StoragePort = (*PostgresAdapter)(nil)

func NewPostgresAdapter(ctx context.Context, opts PostgresOptions) (*PostgresAdapter, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &PostgresAdapter{sqlStore{
		db: db,
		d: dialect{
			name:        "postgres",
			schema:      postgresSchema,
			placeholder: dollarPlaceholder,
			timeArg:     func(t time.Time) any { return t.UTC() },
			parseTime:   scanTimestamp,
		},
		writeTimeout: opts.WriteTimeout,
		queryTimeout: opts.QueryTimeout,
	}}

	if err := a.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *PostgresAdapter) WritePoints(ctx context.Context, points []model.Point) error {
	return a.writePoints(ctx, points)
}

func (a *PostgresAdapter) QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	return a.queryRange(ctx, symbol, start)
}

func (a *PostgresAdapter) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func (a *PostgresAdapter) Close() error {
	return a.close()
}

func scanTimestamp(v any) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected time column type %T", v)
	}
	return t.UTC(), nil
}
