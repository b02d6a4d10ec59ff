package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

type recordingRunner struct {
	mu    sync.Mutex
	slots []string
}

func (r *recordingRunner) RunSlot(ctx context.Context, slot schedule.TimeSlot) (*generator.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = append(r.slots, slot.Label)
	return &generator.Thread{TimeSlot: slot.Label}, nil
}

func testSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	s, err := schedule.New(time.FixedZone("KST", 9*3600), []schedule.TimeSlot{
		{Label: "07:00"}, {Label: "12:00"}, {Label: "21:00"},
	})
	require.NoError(t, err)
	return s
}

func TestNewRegistersOneEntryPerSlot(t *testing.T) {
	s, err := New(testSchedule(t), &recordingRunner{})
	require.NoError(t, err)

	entries := s.Cron().Entries()
	require.Len(t, entries, 3)

	kst := time.FixedZone("KST", 9*3600)
	from := time.Date(2025, 6, 2, 8, 0, 0, 0, kst)
	next := entries[1].Schedule.Next(from)
	assert.Equal(t, 12, next.In(kst).Hour())
	assert.Equal(t, 2, next.In(kst).Day())
}

func TestSlotSpec(t *testing.T) {
	assert.Equal(t, "0 7 * * *", SlotSpec(schedule.TimeSlot{Hour: 7}))
	assert.Equal(t, "0 21 * * *", SlotSpec(schedule.TimeSlot{Hour: 21}))
}

func TestRunOnceUsesResolvedSlot(t *testing.T) {
	r := &recordingRunner{}
	s, err := New(testSchedule(t), r)
	require.NoError(t, err)

	th, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, r.slots, 1)
	assert.Equal(t, r.slots[0], th.TimeSlot)
}

func TestRunInvokesRunner(t *testing.T) {
	r := &recordingRunner{}
	s, err := New(testSchedule(t), r)
	require.NoError(t, err)

	s.run(schedule.TimeSlot{Label: "12:00", Hour: 12})
	assert.Equal(t, []string{"12:00"}, r.slots)
}
