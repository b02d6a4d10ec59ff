package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LJTian/TrendingThreads/internal/metrics"
)

// MinTitleLength is the noise floor: titles with this many runes or fewer are dropped.
const MinTitleLength = 10

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 TrendingThreadsBot/1.0"
	defaultLimit     = 5
)

// NewsItem is the normalized unit produced by every source.
//
// PopularityScore uses a source-defined scale (upvotes, rank-derived proxy, title
// length). Values from different sources are not comparable; the engine orders by
// them anyway and accepts the approximation.
type NewsItem struct {
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Link            string    `json:"link"`
	Published       time.Time `json:"published"`
	Source          string    `json:"source"`
	PopularityScore float64   `json:"popularity_score"`
	Rank            int       `json:"rank,omitempty"`
}

// Fetcher abstracts one source endpoint.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]NewsItem, error)
}

// SourceKind enumerates the supported adapters.
type SourceKind int

const (
	KindRankingPage SourceKind = iota + 1
	KindFeed
	KindHotListing
	KindForum
)

func (k SourceKind) String() string {
	switch k {
	case KindRankingPage:
		return "ranking"
	case KindFeed:
		return "rss"
	case KindHotListing:
		return "reddit"
	case KindForum:
		return "hackernews"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SourceSpec is a closed set of typed source declarations. Only the types in this
// package implement it.
type SourceSpec interface {
	Kind() SourceKind
	Label() string
	TargetCount() int
	sourceSpec()
}

// RankingPageSpec declares an HTML ranking page walked section by section.
type RankingPageSpec struct {
	Name            string
	URL             string
	Limit           int
	SectionSelector string
	ItemSelector    string
	MaxSections     int
	PerSection      int
}

// FeedSpec declares an RSS/Atom feed.
type FeedSpec struct {
	Name  string
	URL   string
	Limit int
}

// HotListingSpec declares a link-aggregator "hot" JSON listing.
type HotListingSpec struct {
	Name     string
	URL      string
	Limit    int
	MinScore int
}

// ForumSpec declares a Hacker News style id-list + item-detail API.
type ForumSpec struct {
	Name     string
	BaseURL  string
	Limit    int
	MinScore int
}

func (s RankingPageSpec) Kind() SourceKind { return KindRankingPage }
func (s FeedSpec) Kind() SourceKind        { return KindFeed }
func (s HotListingSpec) Kind() SourceKind  { return KindHotListing }
func (s ForumSpec) Kind() SourceKind       { return KindForum }

func (s RankingPageSpec) Label() string { return s.Name }
func (s FeedSpec) Label() string        { return s.Name }
func (s HotListingSpec) Label() string  { return s.Name }
func (s ForumSpec) Label() string       { return s.Name }

func (s RankingPageSpec) TargetCount() int { return limitOrDefault(s.Limit) }
func (s FeedSpec) TargetCount() int        { return limitOrDefault(s.Limit) }
func (s HotListingSpec) TargetCount() int  { return limitOrDefault(s.Limit) }
func (s ForumSpec) TargetCount() int       { return limitOrDefault(s.Limit) }

func (RankingPageSpec) sourceSpec() {}
func (FeedSpec) sourceSpec()        {}
func (HotListingSpec) sourceSpec()  {}
func (ForumSpec) sourceSpec()       {}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

// Options carries the transport settings shared by all adapters.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// NewFetcher builds the adapter for spec.
func NewFetcher(spec SourceSpec, opts Options) (Fetcher, error) {
	opts = opts.withDefaults()
	switch s := spec.(type) {
	case RankingPageSpec:
		return NewRankingPageFetcher(s, opts), nil
	case FeedSpec:
		return NewFeedFetcher(s, opts), nil
	case HotListingSpec:
		return NewHotListingFetcher(s, opts), nil
	case ForumSpec:
		return NewForumFetcher(s, opts), nil
	default:
		return nil, fmt.Errorf("collector: unsupported source spec %T", spec)
	}
}

// Collect runs f and never fails: errors, timeouts and panics are logged and an
// empty slice is returned so the caller can continue with partial results.
func Collect(ctx context.Context, f Fetcher, limit int) (items []NewsItem) {
	name := f.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("source panicked", "source", name, "panic", r)
			metrics.RecordFetch(name, "panic", 0, time.Since(start).Seconds())
			items = []NewsItem{}
		}
	}()

	items, err := f.Fetch(ctx, limit)
	if err != nil {
		slog.Warn("source fetch failed", "source", name, "error", err)
		metrics.RecordFetch(name, "error", 0, time.Since(start).Seconds())
		return []NewsItem{}
	}
	if items == nil {
		items = []NewsItem{}
	}
	slog.Debug("source fetched", "source", name, "items", len(items))
	metrics.RecordFetch(name, "ok", len(items), time.Since(start).Seconds())
	return items
}

// ValidTitle reports whether title clears the noise floor.
func ValidTitle(title string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(title)) > MinTitleLength
}

// absoluteURL resolves ref against base; ref is returned untouched when either side
// does not parse.
func absoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ref
	}
	origin := &url.URL{Scheme: b.Scheme, Host: b.Host}
	return origin.ResolveReference(r).String()
}

// newHTTPClient returns a client honoring the adapter timeout.
func newHTTPClient(opts Options) *http.Client {
	return &http.Client{Timeout: opts.Timeout}
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
