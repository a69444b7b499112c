package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// Times are stored as unix nanoseconds so range filters compare integers.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ohlcv (
	symbol TEXT NOT NULL,
	time INTEGER NOT NULL,
	open REAL,
	high REAL,
	low REAL,
	close REAL,
	volume REAL,
	PRIMARY KEY (symbol, time)
);
CREATE INDEX IF NOT EXISTS idx_ohlcv_time ON ohlcv(time);
`

type SQLiteOptions struct {
	Path         string
	WriteTimeout time.Duration
	QueryTimeout time.Duration
}

// SQLiteAdapter is a single-file store for local runs. SQLite takes one writer at
// a time, so writes are serialized in-process.
type SQLiteAdapter struct {
	sqlStore
	writeMu sync.Mutex
}

var _ port.StoragePort = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(ctx context.Context, opts SQLiteOptions) (*SQLiteAdapter, error) {
	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + opts.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &SQLiteAdapter{sqlStore: sqlStore{
		db: db,
		d: dialect{
			name:        "sqlite",
			schema:      sqliteSchema,
			placeholder: questionPlaceholder,
			timeArg:     func(t time.Time) any { return t.UnixNano() },
			parseTime:   scanUnixNano,
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

func (a *SQLiteAdapter) WritePoints(ctx context.Context, points []model.Point) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.writePoints(ctx, points)
}

func (a *SQLiteAdapter) QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	return a.queryRange(ctx, symbol, start)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func (a *SQLiteAdapter) Close() error {
	return a.close()
}

func scanUnixNano(v any) (time.Time, error) {
	n, ok := v.(int64)
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected time column type %T", v)
	}
	return time.Unix(0, n).UTC(), nil
}
