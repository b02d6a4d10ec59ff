package collector

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Cache stores fetched item slices for a short time so repeated runs inside one slot
// do not hammer the same source.
type Cache interface {
	GetItems(ctx context.Context, key string) ([]NewsItem, bool, error)
	SetItems(ctx context.Context, key string, items []NewsItem, ttl time.Duration) error
}

type cachedFetcher struct {
	inner Fetcher
	cache Cache
	key   string
	ttl   time.Duration
}

// Cached wraps f so that a hit in cache short-circuits the network fetch. Cache
// failures are logged and degrade to a live fetch. Empty results are not cached.
func Cached(f Fetcher, cache Cache, key string, ttl time.Duration) Fetcher {
	if cache == nil || ttl <= 0 {
		return f
	}
	return &cachedFetcher{inner: f, cache: cache, key: key, ttl: ttl}
}

func (c *cachedFetcher) Name() string {
	return c.inner.Name()
}

func (c *cachedFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	items, ok, err := c.cache.GetItems(ctx, c.key)
	if err != nil {
		slog.Warn("fetch cache read failed", "source", c.inner.Name(), "error", err)
	}
	if ok && len(items) >= limit {
		return items[:limit], nil
	}

	items, err = c.inner.Fetch(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := c.cache.SetItems(ctx, c.key, items, c.ttl); err != nil {
			slog.Warn("fetch cache write failed", "source", c.inner.Name(), "error", err)
		}
	}
	return items, nil
}

// CacheKey derives a stable key for a source spec. The name stays readable; the
// digest covers every field that shapes the result (URL, limit, thresholds,
// selectors), so same-named sources never share an entry.
func CacheKey(spec SourceSpec) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%#v", spec)))
	return "trending:source:" + spec.Kind().String() + ":" + spec.Label() + ":" + hex.EncodeToString(sum[:8])
}
