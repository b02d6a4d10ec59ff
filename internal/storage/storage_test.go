package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

var kst = time.FixedZone("KST", 9*3600)

func thread(slot string) *generator.Thread {
	return &generator.Thread{
		RunID:       "run-" + slot,
		TimeSlot:    slot,
		Category:    "경제",
		Format:      schedule.FormatThread,
		Content:     "📰 삼성전자 영업이익 20% 증가",
		GeneratedAt: "2025-06-02T09:00:00+09:00",
		CharCount:   20,
		SourceNews:  []collector.NewsItem{{Title: "삼성전자 실적 발표 소식", Link: "https://example.com/1", PopularityScore: 3}},
	}
}

func TestThreadLogAppendAndDay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := NewThreadLog(dir, kst)
	l.now = func() time.Time { return time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC) } // 2025-06-02 in KST

	require.NoError(t, l.Append(thread("07:00")))
	require.NoError(t, l.Append(thread("09:00")))

	path := l.Path(l.now())
	assert.Equal(t, filepath.Join(dir, "trending_thread_log_20250602.json"), path)

	got, err := l.Day(time.Date(2025, 6, 2, 12, 0, 0, 0, kst))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "07:00", got[0].TimeSlot)
	assert.Equal(t, "09:00", got[1].TimeSlot)
	assert.Equal(t, "https://example.com/1", got[1].SourceNews[0].Link)
}

func TestThreadLogRecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	l := NewThreadLog(dir, kst)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, kst)
	l.now = func() time.Time { return now }

	require.NoError(t, os.WriteFile(l.Path(now), []byte("{not json"), 0o644))
	_, err := l.Day(now)
	assert.Error(t, err)

	require.NoError(t, l.Append(thread("09:00")))
	got, err := l.Day(now)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestThreadLogMissingDayIsEmpty(t *testing.T) {
	l := NewThreadLog(t.TempDir(), kst)
	got, err := l.Day(time.Now())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(rdb)
	ctx := context.Background()

	_, ok, err := c.GetItems(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	items := []collector.NewsItem{{Title: "Cached headline for the slot", Link: "https://x/1", PopularityScore: 9}}
	require.NoError(t, c.SetItems(ctx, "k", items, time.Minute))

	got, ok, err := c.GetItems(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, items[0].Title, got[0].Title)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetItems(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheWrapsFetcher(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	var _ collector.Cache = c
	key := collector.CacheKey(collector.FeedSpec{Name: "g", URL: "https://example.com/rss"})
	require.NoError(t, c.SetItems(context.Background(), key, []collector.NewsItem{{Title: "x"}}, time.Minute))
	assert.True(t, mr.Exists(key))
}

func TestRecordConversion(t *testing.T) {
	th := thread("12:00")
	th.Content = "bad \xff byte"

	rec, err := toRecord(th, "telegram", kst)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", rec.PublishedDate)
	assert.Equal(t, "bad � byte", rec.Content)
	assert.Equal(t, "telegram", rec.Channel)

	back := rec.Thread()
	assert.Equal(t, th.RunID, back.RunID)
	assert.Equal(t, schedule.FormatThread, back.Format)
	require.Len(t, back.SourceNews, 1)
	assert.Equal(t, "삼성전자 실적 발표 소식", back.SourceNews[0].Title)
}

func TestTruncateRunesDB(t *testing.T) {
	assert.Equal(t, "가나", truncateRunesDB("가나다", 2))
	assert.Equal(t, "", truncateRunesDB("가나다", 0))
	assert.Equal(t, "abc", truncateRunesDB("  abc  ", 10))
}
