package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hotJSON = `{"data":{"children":[
 {"data":{"title":"Low score post that is long enough","url":"https://example.com/low","score":50}},
 {"data":{"title":"Mid score story about world markets","url":"https://example.com/mid","score":500}},
 {"data":{"title":"Self post discussion thread today","permalink":"/r/worldnews/comments/abc/self/","is_self":true,"score":900,"selftext":"body"}},
 {"data":{"title":"tiny","url":"https://example.com/tiny","score":5000}},
 {"data":{"title":"Exactly threshold score is excluded","url":"https://example.com/eq","score":100}}
]}}`

func TestHotListingFetcherFiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(hotJSON))
	}))
	defer srv.Close()

	f := NewHotListingFetcher(HotListingSpec{Name: "reddit", URL: srv.URL + "/r/worldnews/hot.json"}, Options{})
	items, err := f.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 900.0, items[0].PopularityScore)
	assert.Equal(t, srv.URL+"/r/worldnews/comments/abc/self/", items[0].Link)
	assert.Equal(t, "body", items[0].Summary)
	assert.Equal(t, 500.0, items[1].PopularityScore)
	assert.Equal(t, "https://example.com/mid", items[1].Link)
}

func TestHotListingFetcherKeepsFirstLimitThenSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hotJSON))
	}))
	defer srv.Close()

	f := NewHotListingFetcher(HotListingSpec{Name: "reddit", URL: srv.URL}, Options{})
	items, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/mid", items[0].Link)
}

func TestHotListingFetcherBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHotListingFetcher(HotListingSpec{Name: "reddit", URL: srv.URL}, Options{})
	_, err := f.Fetch(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
