package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

// RedisAdapter caches query results under series:<symbol>:<range>.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.CachePort = (*RedisAdapter)(nil)

func NewRedisAdapter(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisAdapter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisAdapter{
		client: client,
		ttl:    ttl,
	}, nil
}

func seriesKey(symbol, rangeExpr string) string {
	return fmt.Sprintf("series:%s:%s", symbol, rangeExpr)
}

func (a *RedisAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *RedisAdapter) GetSeries(ctx context.Context, symbol, rangeExpr string) ([]model.SeriesRow, bool, error) {
	data, err := a.client.Get(ctx, seriesKey(symbol, rangeExpr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get series from redis: %w", err)
	}

	var rows []model.SeriesRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	if rows == nil {
		rows = []model.SeriesRow{}
	}
	return rows, true, nil
}

func (a *RedisAdapter) SetSeries(ctx context.Context, symbol, rangeExpr string, rows []model.SeriesRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	if err := a.client.Set(ctx, seriesKey(symbol, rangeExpr), data, a.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set series in redis: %w", err)
	}
	return nil
}

// InvalidateSymbol drops every cached range of symbol.
func (a *RedisAdapter) InvalidateSymbol(ctx context.Context, symbol string) error {
	var keys []string
	iter := a.client.Scan(ctx, 0, seriesKey(symbol, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := a.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", symbol, err)
	}
	return nil
}

func (a *RedisAdapter) Close() error {
	return a.client.Close()
}
