package collector

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const feedSummaryMaxRunes = 200

// attributionSep separates a headline from the publisher name aggregators append.
const attributionSep = " - "

// FeedFetcher reads an RSS/Atom feed. Feeds carry no popularity signal, so the raw
// title length is used as a content-richness proxy.
type FeedFetcher struct {
	spec   FeedSpec
	parser *gofeed.Parser
	strip  *bluemonday.Policy
}

func NewFeedFetcher(spec FeedSpec, opts Options) *FeedFetcher {
	opts = opts.withDefaults()
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(opts)
	parser.UserAgent = opts.UserAgent
	return &FeedFetcher{
		spec:   spec,
		parser: parser,
		strip:  bluemonday.StrictPolicy(),
	}
}

func (f *FeedFetcher) Name() string {
	return f.spec.Name
}

func (f *FeedFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	slog.Debug("fetch feed", "source", f.spec.Name, "url", f.spec.URL)

	feed, err := f.parser.ParseURLWithContext(f.spec.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed %s: parse: %w", f.spec.Name, err)
	}
	return f.toItems(feed.Items, limit, time.Now()), nil
}

func (f *FeedFetcher) toItems(entries []*gofeed.Item, limit int, now time.Time) []NewsItem {
	if limit <= 0 {
		limit = len(entries)
	}
	items := make([]NewsItem, 0, limit)
	for _, entry := range entries {
		if len(items) >= limit {
			break
		}
		if entry == nil {
			continue
		}
		raw := strings.TrimSpace(entry.Title)
		title := StripAttribution(raw)
		if !ValidTitle(title) {
			continue
		}

		published := now
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		items = append(items, NewsItem{
			Title:           title,
			Summary:         f.plainText(entry.Description),
			Link:            absoluteURL(f.spec.URL, entry.Link),
			Published:       published,
			Source:          f.spec.Name,
			PopularityScore: float64(utf8.RuneCountInString(raw)),
			Rank:            len(items) + 1,
		})
	}
	return items
}

func (f *FeedFetcher) plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(f.strip.Sanitize(s))
	return truncateRunes(strings.Join(strings.Fields(text), " "), feedSummaryMaxRunes)
}

// StripAttribution drops a trailing " - Publisher" suffix.
func StripAttribution(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.LastIndex(title, attributionSep); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return title
}
