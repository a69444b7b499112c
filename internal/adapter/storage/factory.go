package storage

import (
	"context"
	"fmt"

	"barflow/internal/domain/port"
	"barflow/internal/infrastructure/config"
)

// New opens the store selected by cfg.Store.Driver.
func New(ctx context.Context, cfg *config.Config) (port.StoragePort, error) {
	s := cfg.Store
	switch s.Driver {
	case config.DriverInfluxDB:
		return NewInfluxAdapter(InfluxOptions{
			URL:          s.InfluxDB.URL,
			Token:        s.InfluxDB.Token,
			Org:          s.InfluxDB.Org,
			Bucket:       s.InfluxDB.Bucket,
			WriteTimeout: s.WriteTimeout,
			QueryTimeout: s.QueryTimeout,
		}), nil
	case config.DriverPostgres:
		pg, err := NewPostgresAdapter(ctx, PostgresOptions{
			DSN:             s.PostgreSQL.DSN,
			MaxOpenConns:    s.PostgreSQL.MaxOpenConns,
			MaxIdleConns:    s.PostgreSQL.MaxIdleConns,
			ConnMaxLifetime: s.PostgreSQL.ConnMaxLifetime,
			WriteTimeout:    s.WriteTimeout,
			QueryTimeout:    s.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite:
		lite, err := NewSQLiteAdapter(ctx, SQLiteOptions{
			Path:         s.SQLite.Path,
			WriteTimeout: s.WriteTimeout,
			QueryTimeout: s.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", s.Driver)
	}
}
