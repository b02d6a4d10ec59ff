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
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	hnBaseURL          = "https://hacker-news.firebaseio.com/v0"
	hnItemPageURL      = "https://news.ycombinator.com/item?id=%d"
	hnMaxResponseBytes = 1 << 20 // 1MB
	hnConcurrency      = 10
	hnDefaultMinScore  = 50
	// hnRequestsPerSecond caps item-detail calls against the Firebase API.
	hnRequestsPerSecond = 20
)

// ForumFetcher pulls top stories through the Hacker News Firebase API: one call for
// the id list, then one call per candidate id.
type ForumFetcher struct {
	spec    ForumSpec
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
}

func NewForumFetcher(spec ForumSpec, opts Options) *ForumFetcher {
	opts = opts.withDefaults()
	if spec.BaseURL == "" {
		spec.BaseURL = hnBaseURL
	}
	spec.BaseURL = strings.TrimRight(spec.BaseURL, "/")
	if spec.MinScore <= 0 {
		spec.MinScore = hnDefaultMinScore
	}
	return &ForumFetcher{
		spec:    spec,
		opts:    opts,
		client:  newHTTPClient(opts),
		limiter: rate.NewLimiter(rate.Limit(hnRequestsPerSecond), hnConcurrency),
	}
}

func (h *ForumFetcher) Name() string {
	return h.spec.Name
}

type hnItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
}

func (h *ForumFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	slog.Debug("fetch forum top stories", "source", h.spec.Name)

	var ids []int
	if err := h.getJSON(ctx, h.spec.BaseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("forum %s: top stories: %w", h.spec.Name, err)
	}

	// Over-fetch to survive the type/score filter.
	if max := 2 * limit; len(ids) > max {
		ids = ids[:max]
	}

	// Slots keep id order regardless of completion order.
	slots := make([]*hnItem, len(ids))
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, hnConcurrency)
	)
	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx, id int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := h.limiter.Wait(ctx); err != nil {
				return
			}
			var it hnItem
			if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.spec.BaseURL, id), &it); err != nil {
				slog.Debug("forum item failed", "source", h.spec.Name, "id", id, "error", err)
				return
			}
			slots[idx] = &it
		}(i, id)
	}
	wg.Wait()

	return h.toItems(slots, limit, time.Now()), nil
}

func (h *ForumFetcher) toItems(slots []*hnItem, limit int, now time.Time) []NewsItem {
	items := make([]NewsItem, 0, len(slots))
	for idx, it := range slots {
		if it == nil || it.Type != "story" || it.Score <= h.spec.MinScore {
			continue
		}
		title := strings.TrimSpace(it.Title)
		if !ValidTitle(title) {
			continue
		}
		link := it.URL
		if link == "" {
			link = fmt.Sprintf(hnItemPageURL, it.ID)
		}
		published := now
		if it.Time > 0 {
			published = time.Unix(it.Time, 0)
		}
		items = append(items, NewsItem{
			Title:           title,
			Summary:         truncateRunes(it.Text, feedSummaryMaxRunes),
			Link:            link,
			Published:       published,
			Source:          h.spec.Name,
			PopularityScore: float64(it.Score),
			Rank:            idx + 1,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PopularityScore > items[j].PopularityScore
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (h *ForumFetcher) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, hnMaxResponseBytes)).Decode(out)
}
