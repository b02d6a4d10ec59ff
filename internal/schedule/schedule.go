// Package schedule maps wall-clock time onto the configured daily posting slots.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/TrendingThreads/internal/collector"
)

// Format selects the post style generated for a slot.
type Format string

const (
	FormatThread   Format = "thread"
	FormatHotIssue Format = "hot_issue"
)

// DefaultZone is the zone all slot labels are expressed in unless configured otherwise.
const DefaultZone = "Asia/Seoul"

// TimeSlot is one named posting time of the day with its source list.
type TimeSlot struct {
	Label    string                 `json:"label"`
	Hour     int                    `json:"hour"`
	Category string                 `json:"category"`
	Format   Format                 `json:"format"`
	Sources  []collector.SourceSpec `json:"-"`
}

// Schedule is the immutable, ascending list of slots plus the fixed zone.
type Schedule struct {
	loc   *time.Location
	slots []TimeSlot
}

var ErrEmptySchedule = errors.New("schedule: no time slots configured")

// New validates slots, fills in their hours and sorts them ascending.
func New(loc *time.Location, slots []TimeSlot) (*Schedule, error) {
	if len(slots) == 0 {
		return nil, ErrEmptySchedule
	}
	if loc == nil {
		loc = time.UTC
	}

	out := make([]TimeSlot, 0, len(slots))
	seen := make(map[int]string, len(slots))
	for _, s := range slots {
		h, err := ParseLabel(s.Label)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[h]; dup {
			return nil, fmt.Errorf("schedule: slot %q duplicates %q", s.Label, prev)
		}
		seen[h] = s.Label
		s.Hour = h
		s.Label = FormatLabel(h)
		if s.Format == "" {
			s.Format = FormatThread
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })

	return &Schedule{loc: loc, slots: out}, nil
}

func (s *Schedule) Location() *time.Location { return s.loc }

// Slots returns a copy of the slots in ascending order.
func (s *Schedule) Slots() []TimeSlot {
	return append([]TimeSlot(nil), s.slots...)
}

func (s *Schedule) Labels() []string {
	labels := make([]string, len(s.slots))
	for i, sl := range s.slots {
		labels[i] = sl.Label
	}
	return labels
}

// Slot looks a slot up by its label.
func (s *Schedule) Slot(label string) (TimeSlot, bool) {
	h, err := ParseLabel(label)
	if err != nil {
		return TimeSlot{}, false
	}
	for _, sl := range s.slots {
		if sl.Hour == h {
			return sl, true
		}
	}
	return TimeSlot{}, false
}

// Resolve always returns exactly one slot.
func (s *Schedule) Resolve(now time.Time) TimeSlot {
	sl, _ := s.Slot(ResolveSlot(now, s.loc, s.Labels()))
	return sl
}

// ResolveSlot picks the slot label for now: the current hour if it is a slot,
// otherwise the next slot later in the day, otherwise the last slot of the day.
// The result is one of labels exactly as given. Returns "" only when labels is empty or has no parseable label.
func ResolveSlot(now time.Time, loc *time.Location, labels []string) string {
	if loc != nil {
		now = now.In(loc)
	}
	type slotLabel struct {
		hour  int
		label string
	}
	parsed := make([]slotLabel, 0, len(labels))
	for _, l := range labels {
		if h, err := ParseLabel(l); err == nil {
			parsed = append(parsed, slotLabel{hour: h, label: l})
		}
	}
	if len(parsed) == 0 {
		return ""
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].hour < parsed[j].hour })

	current := now.Hour()
	for _, p := range parsed {
		if p.hour >= current {
			return p.label
		}
	}
	return parsed[len(parsed)-1].label
}

// ParseLabel reads an "HH:00" label.
func ParseLabel(label string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(label), ":")
	if !ok || mm != "00" {
		return 0, fmt.Errorf("schedule: invalid slot label %q, want HH:00", label)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("schedule: invalid slot hour in %q", label)
	}
	return h, nil
}

func FormatLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
