package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/generator"
)

const (
	summaryExcerptRunes = 100
	discordContentLimit = 2000
	discordFieldLimit   = 1000
)

// shortTime trims an ISO-8601 timestamp to minutes.
func shortTime(iso string) string {
	if len(iso) > 16 {
		return iso[:16]
	}
	return iso
}

func score(it collector.NewsItem) string {
	return strconv.FormatFloat(it.PopularityScore, 'f', -1, 64)
}

// mdTitle keeps link text from closing a Markdown link early.
func mdTitle(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func sourceNews(t *generator.Thread) []collector.NewsItem {
	if len(t.SourceNews) > generator.SourceNewsLimit {
		return t.SourceNews[:generator.SourceNewsLimit]
	}
	return t.SourceNews
}

// markdownLinks renders "1. [title](link) (인기도: n)" lines.
func markdownLinks(t *generator.Thread) string {
	var b strings.Builder
	for i, it := range sourceNews(t) {
		fmt.Fprintf(&b, "%d. [%s](%s) (인기도: %s)\n", i+1, mdTitle(it.Title), it.Link, score(it))
	}
	return b.String()
}

// DailySummaryText renders the digest of a day's threads, capped to what a single
// chat message can carry.
func DailySummaryText(threads []generator.Thread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **오늘의 인기 뉴스 쓰레드 요약 (%d개)**\n\n", len(threads))
	for i, t := range threads {
		fmt.Fprintf(&b, "**%d. %s - %s**\n", i+1, t.TimeSlot, t.Category)
		fmt.Fprintf(&b, "```%s...```\n\n", truncate(t.Content, summaryExcerptRunes))
	}
	return truncate(b.String(), discordContentLimit)
}

func truncate(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
