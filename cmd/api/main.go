// Command api runs the slot scheduler and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/TrendingThreads/internal/api"
	"github.com/LJTian/TrendingThreads/internal/app"
	"github.com/LJTian/TrendingThreads/internal/config"
	"github.com/LJTian/TrendingThreads/internal/logging"
	"github.com/LJTian/TrendingThreads/internal/notifier"
	"github.com/LJTian/TrendingThreads/internal/scheduler"
	"github.com/LJTian/TrendingThreads/internal/storage"
)

const summaryTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Full(ctx, cfg)
	if err != nil {
		slog.Error("init failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	s, err := scheduler.New(a.Schedule, a.Runner)
	if err != nil {
		slog.Error("init scheduler failed", "error", err)
		os.Exit(1)
	}

	// Daily digest of the threads delivered so far today.
	if cfg.SummaryCron != "" {
		if _, err := s.Cron().AddFunc(cfg.SummaryCron, func() { sendSummary(a.ThreadLog, a.Notifier, time.Now()) }); err != nil {
			slog.Warn("add summary cron failed", "spec", cfg.SummaryCron, "error", err)
		}
	}
	s.Start()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	var archive api.Archive
	if a.Store != nil {
		archive = a.Store
	}
	api.NewServer(a.Schedule, a.ThreadLog, archive, s).RegisterRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		slog.Info("starting api server", "addr", srv.Addr, "slots", a.Schedule.Labels())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exit", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	// Wait for an in-flight slot run.
	<-s.Stop().Done()
}

func sendSummary(log *storage.ThreadLog, n notifier.Notifier, now time.Time) {
	s, ok := n.(notifier.SummarySender)
	if !ok {
		return
	}
	threads, err := log.Day(now)
	if err != nil {
		slog.Warn("summary: read thread log", "error", err)
		return
	}
	if len(threads) == 0 {
		slog.Info("summary: nothing delivered today")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
	defer cancel()
	if err := s.SendDailySummary(ctx, threads); err != nil {
		slog.Error("summary: send failed", "error", err)
		return
	}
	slog.Info("summary: sent", "threads", len(threads))
}
