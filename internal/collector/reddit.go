package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	defaultHotMinScore     = 100
	hotListingMaxBodyBytes = 4 << 20
)

// HotListingFetcher reads a reddit-style "hot" JSON listing.
type HotListingFetcher struct {
	spec   HotListingSpec
	opts   Options
	client *http.Client
}

func NewHotListingFetcher(spec HotListingSpec, opts Options) *HotListingFetcher {
	opts = opts.withDefaults()
	if spec.MinScore <= 0 {
		spec.MinScore = defaultHotMinScore
	}
	return &HotListingFetcher{spec: spec, opts: opts, client: newHTTPClient(opts)}
}

func (h *HotListingFetcher) Name() string {
	return h.spec.Name
}

type hotListing struct {
	Data struct {
		Children []struct {
			Data hotPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type hotPost struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Selftext   string  `json:"selftext"`
	IsSelf     bool    `json:"is_self"`
}

func (h *HotListingFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	slog.Debug("fetch hot listing", "source", h.spec.Name, "url", h.spec.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.spec.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("hot listing %s: new request: %w", h.spec.Name, err)
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hot listing %s: %w", h.spec.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hot listing %s: unexpected status %d", h.spec.Name, resp.StatusCode)
	}

	var listing hotListing
	if err := json.NewDecoder(io.LimitReader(resp.Body, hotListingMaxBodyBytes)).Decode(&listing); err != nil {
		return nil, fmt.Errorf("hot listing %s: decode: %w", h.spec.Name, err)
	}

	posts := make([]hotPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return h.toItems(posts, limit, time.Now()), nil
}

func (h *HotListingFetcher) toItems(posts []hotPost, limit int, now time.Time) []NewsItem {
	if limit <= 0 {
		limit = len(posts)
	}
	items := make([]NewsItem, 0, limit)
	for i, p := range posts {
		if len(items) >= limit {
			break
		}
		title := strings.TrimSpace(p.Title)
		if p.Score <= h.spec.MinScore || !ValidTitle(title) {
			continue
		}

		link := p.URL
		if p.IsSelf || link == "" {
			link = p.Permalink
		}
		published := now
		if p.CreatedUTC > 0 {
			published = time.Unix(int64(p.CreatedUTC), 0)
		}

		items = append(items, NewsItem{
			Title:           title,
			Summary:         truncateRunes(p.Selftext, feedSummaryMaxRunes),
			Link:            absoluteURL(h.spec.URL, link),
			Published:       published,
			Source:          h.spec.Name,
			PopularityScore: float64(p.Score),
			Rank:            i + 1,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PopularityScore > items[j].PopularityScore
	})
	return items
}
