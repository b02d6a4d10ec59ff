package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHNServer(t *testing.T, ids []int, items map[int]hnItem) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/topstories.json" {
			_ = json.NewEncoder(w).Encode(ids)
			return
		}
		var id int
		if _, err := fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/v0/item/"), "%d.json", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		it, ok := items[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(it)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestForumFetcherFiltersAndOrders(t *testing.T) {
	items := map[int]hnItem{
		1: {ID: 1, Type: "story", Title: "Show HN: a tiny database in Go", URL: "https://example.com/1", Score: 100},
		2: {ID: 2, Type: "job", Title: "Acme is hiring backend engineers", URL: "https://example.com/2", Score: 500},
		3: {ID: 3, Type: "story", Title: "Low score story that is long", URL: "https://example.com/3", Score: 10},
		4: {ID: 4, Type: "story", Title: "Ask HN: what are you reading this week", Score: 300},
		5: {ID: 5, Type: "story", Title: "short", URL: "https://example.com/5", Score: 900},
		6: {ID: 6, Type: "story", Title: "Compilers explained with pictures", URL: "https://example.com/6", Score: 60},
	}
	srv := newHNServer(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, items)

	f := NewForumFetcher(ForumSpec{Name: "hn", BaseURL: srv.URL + "/v0/"}, Options{})
	got, err := f.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 300.0, got[0].PopularityScore)
	assert.Equal(t, "https://news.ycombinator.com/item?id=4", got[0].Link)
	assert.Equal(t, 100.0, got[1].PopularityScore)
	assert.Equal(t, 60.0, got[2].PopularityScore)
	for _, it := range got {
		assert.Equal(t, "hn", it.Source)
	}
}

func TestForumFetcherOnlyRequestsTwiceLimit(t *testing.T) {
	items := map[int]hnItem{}
	for i := 1; i <= 10; i++ {
		items[i] = hnItem{ID: i, Type: "story", Title: "Qualifying story number x", URL: "https://example.com", Score: 100 + i}
	}
	srv := newHNServer(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, items)

	f := NewForumFetcher(ForumSpec{Name: "hn", BaseURL: srv.URL + "/v0"}, Options{})
	got, err := f.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 104.0, got[0].PopularityScore)
	assert.Equal(t, 103.0, got[1].PopularityScore)
}

func TestForumFetcherIDListFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewForumFetcher(ForumSpec{Name: "hn", BaseURL: srv.URL}, Options{})
	_, err := f.Fetch(context.Background(), 5)
	assert.Error(t, err)
}

func TestForumItemsDefaultPublishedToNow(t *testing.T) {
	f := NewForumFetcher(ForumSpec{Name: "hn", MinScore: 10}, Options{})
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	got := f.toItems([]*hnItem{
		{ID: 1, Type: "story", Score: 100, Title: "A story without a timestamp"},
		{ID: 2, Type: "story", Score: 50, Title: "A story with a real timestamp", Time: 1717300000},
	}, 5, now)

	require.Len(t, got, 2)
	assert.Equal(t, now, got[0].Published)
	assert.Equal(t, time.Unix(1717300000, 0), got[1].Published)
}
