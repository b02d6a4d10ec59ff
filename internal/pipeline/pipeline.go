// Package pipeline runs one collect → generate → deliver → log cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/metrics"
	"github.com/LJTian/TrendingThreads/internal/notifier"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

var (
	ErrNoNews     = errors.New("no trending news collected")
	ErrGeneration = errors.New("thread generation failed")
	ErrDelivery   = errors.New("thread delivery failed")
)

// Collector gathers the ranked items of one slot.
type Collector interface {
	Collect(ctx context.Context, slot schedule.TimeSlot) []collector.NewsItem
}

type Generator interface {
	Generate(ctx context.Context, items []collector.NewsItem, category, slot string, format schedule.Format) (*generator.Thread, error)
}

// ThreadLog persists delivered threads locally.
type ThreadLog interface {
	Append(th *generator.Thread) error
}

// Archive is the optional long-term store.
type Archive interface {
	SaveThread(th *generator.Thread, channel string) error
}

type Runner struct {
	Schedule  *schedule.Schedule
	Collector Collector
	Generator Generator
	Notifier  notifier.Notifier
	Log       ThreadLog
	Archive   Archive // may be nil
	Now       func() time.Time

	mu sync.Mutex
}

// Run resolves the current slot and runs it.
func (r *Runner) Run(ctx context.Context) (*generator.Thread, error) {
	return r.RunSlot(ctx, r.Schedule.Resolve(r.now()))
}

// RunSlot runs the full cycle for slot. Runs are serialized. Every run-fatal
// failure is reported through the notifier before it is returned.
func (r *Runner) RunSlot(ctx context.Context, slot schedule.TimeSlot) (th *generator.Thread, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := generator.NewRunID()
	log := slog.With("run_id", runID, "slot", slot.Label)
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			log.Error("run failed", "error", err)
			r.notifyError(ctx, log, slot.Label, err)
		}
		metrics.RecordRun(slot.Label, status, time.Since(start).Seconds())
	}()

	log.Info("run started", "category", slot.Category, "sources", len(slot.Sources))

	items := r.Collector.Collect(ctx, slot)
	if len(items) == 0 {
		return nil, ErrNoNews
	}
	for i, it := range items {
		log.Info("candidate", "rank", i+1, "title", it.Title, "score", it.PopularityScore, "source", it.Source)
	}

	th, err = r.Generator.Generate(ctx, items, slot.Category, slot.Label, slot.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	th.RunID = runID
	log.Info("thread generated", "chars", th.CharCount)

	if ok, msg := generator.Validate(th.Content, th.Format); !ok {
		log.Warn("thread failed quality checks, sending anyway", "reason", msg)
		r.notifyError(ctx, log, slot.Label, fmt.Errorf("쓰레드 품질 검증 실패: %s", msg))
	}

	if err := r.Notifier.Send(ctx, th); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	if err := r.Log.Append(th); err != nil {
		log.Warn("append thread log failed", "error", err)
	}
	if r.Archive != nil {
		if err := r.Archive.SaveThread(th, r.Notifier.Name()); err != nil {
			log.Warn("archive thread failed", "error", err)
		}
	}

	log.Info("run finished", "duration", time.Since(start).Round(time.Millisecond))
	return th, nil
}

// notifyError never fails the caller; a broken alert channel is only logged.
func (r *Runner) notifyError(ctx context.Context, log *slog.Logger, slot string, cause error) {
	if err := r.Notifier.NotifyError(ctx, slot, describe(cause)); err != nil {
		log.Warn("error notification failed", "error", err)
	}
}

// describe maps run errors to the operator-facing message.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrNoNews):
		return "수집된 인기 뉴스가 없습니다"
	case errors.Is(err, ErrGeneration):
		return "쓰레드 생성에 실패했습니다: " + unwrapCause(err)
	case errors.Is(err, ErrDelivery):
		return "전송에 실패했습니다: " + unwrapCause(err)
	default:
		return err.Error()
	}
}

func unwrapCause(err error) string {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := u.Unwrap(); len(errs) > 1 {
			return errs[1].Error()
		}
	}
	return err.Error()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
