package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingPage = `<html><body>
<div class="rankingnews_box">
  <a class="list_title" href="/article/001/0000000001">Samsung shares surge after strong earnings report</a>
  <a class="list_title" href="/article/001/0000000002">abcdefgh</a>
  <a class="list_title" href="https://n.news.naver.com/article/002/3">Seoul housing prices climb for third week</a>
</div>
<div class="rankingnews_box">
  <a class="list_title" href="/article/003/0000000004">Korea exports rebound on chip demand in March</a>
</div>
</body></html>`

func newRankingServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRankingPageFetcherWalksSectionsInOrder(t *testing.T) {
	srv := newRankingServer(t, rankingPage)
	f := NewRankingPageFetcher(RankingPageSpec{Name: "naver", URL: srv.URL + "/main/ranking"}, Options{})

	items, err := f.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Samsung shares surge after strong earnings report", items[0].Title)
	assert.Equal(t, srv.URL+"/article/001/0000000001", items[0].Link)
	assert.Equal(t, "https://n.news.naver.com/article/002/3", items[1].Link)
	assert.Equal(t, "Korea exports rebound on chip demand in March", items[2].Title)

	assert.Equal(t, 3.0, items[0].PopularityScore)
	assert.Equal(t, 2.0, items[1].PopularityScore)
	assert.Equal(t, 1.0, items[2].PopularityScore)
	for _, it := range items {
		assert.Equal(t, "naver", it.Source)
		assert.NotEqual(t, "abcdefgh", it.Title)
		assert.True(t, strings.HasPrefix(it.Link, "http"))
	}
}

func TestRankingPageFetcherLimit(t *testing.T) {
	srv := newRankingServer(t, rankingPage)
	f := NewRankingPageFetcher(RankingPageSpec{Name: "naver", URL: srv.URL}, Options{})

	items, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Rank)
}

func TestRankingPageFetcherSectionCap(t *testing.T) {
	srv := newRankingServer(t, rankingPage)
	f := NewRankingPageFetcher(RankingPageSpec{Name: "naver", URL: srv.URL, MaxSections: 1}, Options{})

	items, err := f.Fetch(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRankingPageFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewRankingPageFetcher(RankingPageSpec{Name: "naver", URL: srv.URL}, Options{})
	_, err := f.Fetch(context.Background(), 5)
	assert.Error(t, err)
	assert.Empty(t, Collect(context.Background(), f, 5))
}
