package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LJTian/TrendingThreads/internal/collector"
)

// NewRedisClient connects to addr. A failed ping is only logged; callers treat
// every cache error as a miss.
func NewRedisClient(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis ping failed", "addr", addr, "error", err)
	}
	return rdb
}

// RedisCache stores fetched source items as JSON strings.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) GetItems(ctx context.Context, key string) ([]collector.NewsItem, bool, error) {
	bs, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []collector.NewsItem
	if err := json.Unmarshal(bs, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisCache) SetItems(ctx context.Context, key string, items []collector.NewsItem, ttl time.Duration) error {
	bs, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, bs, ttl).Err()
}
