// Package app wires configuration into the collector, generator and delivery stack
// shared by the CLI and the daemon.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/config"
	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/notifier"
	"github.com/LJTian/TrendingThreads/internal/pipeline"
	"github.com/LJTian/TrendingThreads/internal/processor"
	"github.com/LJTian/TrendingThreads/internal/schedule"
	"github.com/LJTian/TrendingThreads/internal/storage"
)

type App struct {
	Config    *config.Config
	Schedule  *schedule.Schedule
	Engine    *processor.Engine
	ThreadLog *storage.ThreadLog

	// Set by Full only.
	Notifier notifier.Notifier
	Runner   *pipeline.Runner
	Store    *storage.Store // nil unless POSTGRES_DSN is set

	redis   *redis.Client
	closers []io.Closer
}

// Collect builds only what fetching and ranking need. It needs no credentials.
func Collect(cfg *config.Config) (*App, error) {
	sched, err := config.LoadSchedule(cfg.SourcesConfig, cfg.Timezone)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Schedule:  sched,
		ThreadLog: storage.NewThreadLog(cfg.LogDir, sched.Location()),
	}

	engineCfg := processor.EngineConfig{
		Fetch:       collector.Options{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent},
		Concurrency: cfg.FetchConcurrency,
	}
	if cfg.RedisAddr != "" {
		a.redis = storage.NewRedisClient(cfg.RedisAddr)
		a.closers = append(a.closers, a.redis)
		engineCfg.Cache = storage.NewRedisCache(a.redis)
		engineCfg.CacheTTL = cfg.FetchCacheTTL
	}
	a.Engine = processor.NewEngine(engineCfg)
	return a, nil
}

// Full validates credentials and builds the complete pipeline. Validation and
// sources parsing happen before any network activity.
func Full(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := Collect(cfg)
	if err != nil {
		return nil, err
	}

	n, err := notifier.New(cfg, notifier.Options{Timeout: cfg.HTTPTimeout})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Notifier = n

	completer, err := generator.NewCompleter(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init %s completer: %w", cfg.LLMProvider, err)
	}
	if c, ok := completer.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.Runner = &pipeline.Runner{
		Schedule:  a.Schedule,
		Collector: a.Engine,
		Generator: generator.New(completer, a.Schedule.Location()),
		Notifier:  n,
		Log:       a.ThreadLog,
	}

	if cfg.PostgresDSN != "" {
		store, err := storage.NewStore(cfg.PostgresDSN, a.redis, a.Schedule.Location())
		if err != nil {
			slog.Warn("thread archive disabled", "error", err)
		} else {
			a.Store = store
			a.Runner.Archive = store
		}
	}
	return a, nil
}

// NotifyStartupError reports a failure that happened before the runner existed.
// It only works when the delivery channel itself could be configured.
func NotifyStartupError(ctx context.Context, cfg *config.Config, slot string, cause error) {
	n, err := notifier.New(cfg, notifier.Options{Timeout: cfg.HTTPTimeout})
	if err != nil {
		return
	}
	if err := n.NotifyError(ctx, slot, cause.Error()); err != nil {
		slog.Warn("error notification failed", "error", err)
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close resource failed", "error", err)
		}
	}
	a.closers = nil
}
