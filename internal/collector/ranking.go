package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	defaultSectionSelector = ".rankingnews_box"
	defaultItemSelector    = ".list_title"
	defaultMaxSections     = 3
	defaultPerSection      = 5
)

// RankingPageFetcher scrapes a ranked HTML page (e.g. a portal's "most viewed"
// board). The page has no native score, so items are scored by position.
type RankingPageFetcher struct {
	spec RankingPageSpec
	opts Options
}

func NewRankingPageFetcher(spec RankingPageSpec, opts Options) *RankingPageFetcher {
	if spec.SectionSelector == "" {
		spec.SectionSelector = defaultSectionSelector
	}
	if spec.ItemSelector == "" {
		spec.ItemSelector = defaultItemSelector
	}
	if spec.MaxSections <= 0 {
		spec.MaxSections = defaultMaxSections
	}
	if spec.PerSection <= 0 {
		spec.PerSection = defaultPerSection
	}
	return &RankingPageFetcher{spec: spec, opts: opts.withDefaults()}
}

func (r *RankingPageFetcher) Name() string {
	return r.spec.Name
}

type rankedLink struct {
	title string
	href  string
}

func (r *RankingPageFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Debug("fetch ranking page", "source", r.spec.Name, "url", r.spec.URL)

	c := colly.NewCollector(colly.UserAgent(r.opts.UserAgent))
	c.SetRequestTimeout(r.opts.Timeout)

	var links []rankedLink
	c.OnHTML("html", func(e *colly.HTMLElement) {
		links = r.walk(e.DOM)
	})

	if err := c.Visit(r.spec.URL); err != nil {
		return nil, fmt.Errorf("ranking %s: visit: %w", r.spec.Name, err)
	}

	return r.toItems(links, limit, time.Now()), nil
}

// walk collects qualifying links in page order: sections first, then items within
// each section.
func (r *RankingPageFetcher) walk(doc *goquery.Selection) []rankedLink {
	var links []rankedLink
	doc.Find(r.spec.SectionSelector).EachWithBreak(func(i int, section *goquery.Selection) bool {
		if i >= r.spec.MaxSections {
			return false
		}
		section.Find(r.spec.ItemSelector).EachWithBreak(func(j int, a *goquery.Selection) bool {
			if j >= r.spec.PerSection {
				return false
			}
			title := strings.TrimSpace(a.Text())
			if !ValidTitle(title) {
				return true
			}
			href, _ := a.Attr("href")
			if href == "" {
				href, _ = a.Find("a").First().Attr("href")
			}
			links = append(links, rankedLink{title: title, href: href})
			return true
		})
		return true
	})
	return links
}

func (r *RankingPageFetcher) toItems(links []rankedLink, limit int, now time.Time) []NewsItem {
	total := len(links)
	if limit <= 0 || limit > total {
		limit = total
	}
	items := make([]NewsItem, 0, limit)
	for i, l := range links[:limit] {
		items = append(items, NewsItem{
			Title:           l.title,
			Link:            absoluteURL(r.spec.URL, l.href),
			Published:       now,
			Source:          r.spec.Name,
			PopularityScore: float64(total - i),
			Rank:            i + 1,
		})
	}
	return items
}
