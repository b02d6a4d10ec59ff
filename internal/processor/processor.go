// Package processor turns the raw per-source item lists of one time slot into the
// short, ranked, deduplicated candidate list handed to the generator.
package processor

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/metrics"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

const (
	// DuplicateThreshold is the title-token Jaccard similarity above which two
	// items are considered the same story.
	DuplicateThreshold = 0.6
	// FinalLimit caps the engine output.
	FinalLimit = 5
)

// FetcherFactory builds the adapter for a source spec.
type FetcherFactory func(spec collector.SourceSpec, opts collector.Options) (collector.Fetcher, error)

// EngineConfig tunes the engine. The zero value fetches sequentially without a cache.
type EngineConfig struct {
	Fetch       collector.Options
	Concurrency int
	Cache       collector.Cache
	CacheTTL    time.Duration
	// NewFetcher overrides adapter construction; defaults to collector.NewFetcher.
	NewFetcher FetcherFactory
}

// Engine fans out over a slot's sources and merges the results.
type Engine struct {
	cfg EngineConfig
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.NewFetcher == nil {
		cfg.NewFetcher = collector.NewFetcher
	}
	return &Engine{cfg: cfg}
}

// Collect fetches every source of slot and returns at most FinalLimit items. It
// never fails: sources that cannot be built or fetched contribute nothing, and a
// slot where everything fails yields an empty, non-nil slice.
func (e *Engine) Collect(ctx context.Context, slot schedule.TimeSlot) []collector.NewsItem {
	return e.CollectSources(ctx, slot.Sources)
}

// CollectSources is Collect over an explicit source list.
func (e *Engine) CollectSources(ctx context.Context, sources []collector.SourceSpec) []collector.NewsItem {
	// One slot per source; merged in declared order, not completion order.
	results := make([][]collector.NewsItem, len(sources))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i, spec := range sources {
		g.Go(func() error {
			results[i] = e.fetchOne(ctx, spec)
			return nil // per-source failures never fail the group
		})
	}
	_ = g.Wait()

	var all []collector.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}
	out := Aggregate(all)
	slog.Info("aggregated news", "sources", len(sources), "candidates", len(all), "kept", len(out))
	return out
}

func (e *Engine) fetchOne(ctx context.Context, spec collector.SourceSpec) []collector.NewsItem {
	f, err := e.cfg.NewFetcher(spec, e.cfg.Fetch)
	if err != nil {
		slog.Error("build source failed", "source", spec.Label(), "error", err)
		return nil
	}
	f = collector.Cached(f, e.cfg.Cache, collector.CacheKey(spec), e.cfg.CacheTTL)
	return collector.Collect(ctx, f, spec.TargetCount())
}

// Aggregate ranks, deduplicates, filters and truncates a concatenated candidate
// list. Ties keep first-seen order.
func Aggregate(items []collector.NewsItem) []collector.NewsItem {
	sorted := make([]collector.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PopularityScore > sorted[j].PopularityScore
	})

	unique := DedupeLinks(sorted)
	unique = DedupeTitles(unique, DuplicateThreshold)

	out := make([]collector.NewsItem, 0, FinalLimit)
	for _, it := range unique {
		if !collector.ValidTitle(it.Title) {
			continue
		}
		out = append(out, it)
		if len(out) == FinalLimit {
			break
		}
	}
	return out
}

// DedupeLinks drops items whose link was already seen. Items without a link are
// kept and left to the title pass.
func DedupeLinks(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		if link != "" {
			id := hashURL(link)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, it)
	}
	metrics.RecordDuplicates("link", len(items)-len(out))
	return out
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
