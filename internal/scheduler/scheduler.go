package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

// runTimeout bounds one scheduled run: fetch, generation retries and delivery.
const runTimeout = 5 * time.Minute

// SlotRunner runs the pipeline for one slot.
type SlotRunner interface {
	RunSlot(ctx context.Context, slot schedule.TimeSlot) (*generator.Thread, error)
}

// Scheduler fires one pipeline run at the top of every configured slot hour, in
// the schedule's zone.
type Scheduler struct {
	cron     *cron.Cron
	runner   SlotRunner
	schedule *schedule.Schedule
}

func New(sched *schedule.Schedule, runner SlotRunner) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(sched.Location()))

	s := &Scheduler{
		cron:     c,
		runner:   runner,
		schedule: sched,
	}

	for _, slot := range sched.Slots() {
		spec := SlotSpec(slot)
		if _, err := c.AddFunc(spec, func() { s.run(slot) }); err != nil {
			return nil, fmt.Errorf("add slot %s (%q): %w", slot.Label, spec, err)
		}
		slog.Info("slot scheduled", "slot", slot.Label, "spec", spec, "zone", sched.Location().String())
	}

	return s, nil
}

// SlotSpec is the cron expression for slot.
func SlotSpec(slot schedule.TimeSlot) string {
	return fmt.Sprintf("0 %d * * *", slot.Hour)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron and waits for a running job to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Cron exposes the underlying cron for extra jobs such as the daily summary.
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// RunOnce runs the slot resolved for the current time; used for manual triggers.
func (s *Scheduler) RunOnce(ctx context.Context) (*generator.Thread, error) {
	slot := s.schedule.Resolve(time.Now())
	return s.runner.RunSlot(ctx, slot)
}

func (s *Scheduler) run(slot schedule.TimeSlot) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	slog.Info("scheduled run", "slot", slot.Label)
	if _, err := s.runner.RunSlot(ctx, slot); err != nil {
		slog.Error("scheduled run failed", "slot", slot.Label, "error", err)
	}
}
