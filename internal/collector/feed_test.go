package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Top stories</title>
<item>
  <title>Central bank holds rates steady amid inflation worries - Reuters</title>
  <link>https://example.com/a</link>
  <description>&lt;p&gt;The bank &lt;b&gt;held&lt;/b&gt; rates.&lt;/p&gt;</description>
  <pubDate>Mon, 02 Jun 2025 07:00:00 GMT</pubDate>
</item>
<item>
  <title>Short - AP</title>
  <link>https://example.com/b</link>
</item>
<item>
  <title>New battery plant announced in Ulsan - Yonhap</title>
  <link>/c</link>
</item>
<item>
  <title>Third qualifying headline for the feed - BBC</title>
  <link>https://example.com/d</link>
</item>
</channel></rss>`

func TestFeedFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFeedFetcher(FeedSpec{Name: "google", URL: srv.URL + "/rss"}, Options{})
	items, err := f.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Central bank holds rates steady amid inflation worries", items[0].Title)
	assert.Equal(t, "The bank held rates.", items[0].Summary)
	assert.Equal(t, float64(len([]rune("Central bank holds rates steady amid inflation worries - Reuters"))), items[0].PopularityScore)
	assert.Equal(t, 2025, items[0].Published.Year())

	assert.Equal(t, "New battery plant announced in Ulsan", items[1].Title)
	assert.Equal(t, srv.URL+"/c", items[1].Link)
}

func TestStripAttribution(t *testing.T) {
	assert.Equal(t, "Headline one", StripAttribution("Headline one - Publisher"))
	assert.Equal(t, "A - B", StripAttribution("A - B - Publisher"))
	assert.Equal(t, "No suffix", StripAttribution("No suffix"))
	assert.Equal(t, "- Only", StripAttribution("- Only"))
}
