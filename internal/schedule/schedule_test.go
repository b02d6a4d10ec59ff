package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingThreads/internal/collector"
)

var slotLabels = []string{"07:00", "09:00", "12:00", "15:00", "18:00", "21:00"}

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		return time.FixedZone("KST", 9*3600)
	}
	return loc
}

func TestResolveSlot(t *testing.T) {
	loc := seoul(t)
	cases := []struct {
		hour, min int
		want      string
	}{
		{7, 0, "07:00"},
		{8, 30, "09:00"},
		{12, 59, "12:00"},
		{13, 5, "15:00"},
		{0, 10, "07:00"},
		{21, 45, "21:00"},
		{23, 0, "21:00"},
	}
	for _, c := range cases {
		now := time.Date(2025, 6, 2, c.hour, c.min, 0, 0, loc)
		assert.Equal(t, c.want, ResolveSlot(now, loc, slotLabels), "%02d:%02d", c.hour, c.min)
	}
}

func TestResolveSlotConvertsZone(t *testing.T) {
	loc := seoul(t)
	// 03:00 UTC is 12:00 in Seoul.
	now := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "12:00", ResolveSlot(now, loc, slotLabels))
}

func TestResolveSlotUnsortedLabels(t *testing.T) {
	loc := time.UTC
	labels := []string{"21:00", "07:00", "12:00"}
	assert.Equal(t, "12:00", ResolveSlot(time.Date(2025, 1, 1, 10, 0, 0, 0, loc), loc, labels))
	assert.Equal(t, "21:00", ResolveSlot(time.Date(2025, 1, 1, 22, 0, 0, 0, loc), loc, labels))
	assert.Equal(t, "", ResolveSlot(time.Now(), loc, nil))
}

func TestResolveSlotReturnsGivenLabel(t *testing.T) {
	loc := time.UTC
	labels := []string{"7:00", "12:00", "21:00"}
	assert.Equal(t, "7:00", ResolveSlot(time.Date(2025, 1, 1, 6, 0, 0, 0, loc), loc, labels))
	assert.Equal(t, "7:00", ResolveSlot(time.Date(2025, 1, 1, 7, 30, 0, 0, loc), loc, labels))
	assert.Contains(t, labels, ResolveSlot(time.Date(2025, 1, 1, 23, 0, 0, 0, loc), loc, labels))
}

func TestNewSortsAndValidates(t *testing.T) {
	s, err := New(time.UTC, []TimeSlot{
		{Label: "18:00", Category: "entertainment"},
		{Label: "07:00", Category: "morning", Sources: []collector.SourceSpec{collector.FeedSpec{Name: "g"}}},
		{Label: "20:00", Category: "hot", Format: FormatHotIssue},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00", "18:00", "20:00"}, s.Labels())

	sl := s.Resolve(time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "20:00", sl.Label)
	assert.Equal(t, FormatHotIssue, sl.Format)

	sl, ok := s.Slot("07:00")
	require.True(t, ok)
	assert.Equal(t, FormatThread, sl.Format)
	assert.Len(t, sl.Sources, 1)

	_, err = New(time.UTC, nil)
	assert.ErrorIs(t, err, ErrEmptySchedule)

	_, err = New(time.UTC, []TimeSlot{{Label: "7:30"}})
	assert.Error(t, err)

	_, err = New(time.UTC, []TimeSlot{{Label: "07:00"}, {Label: "7:00"}})
	assert.Error(t, err)
}

func TestParseLabel(t *testing.T) {
	h, err := ParseLabel("09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, h)

	_, err = ParseLabel("24:00")
	assert.Error(t, err)
	_, err = ParseLabel("noon")
	assert.Error(t, err)
}
