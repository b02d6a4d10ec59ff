package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	name  string
	items []NewsItem
	err   error
	panic bool
}

func (s stubFetcher) Name() string { return s.name }

func (s stubFetcher) Fetch(ctx context.Context, limit int) ([]NewsItem, error) {
	if s.panic {
		panic("boom")
	}
	return s.items, s.err
}

func TestCollectSwallowsErrors(t *testing.T) {
	items := Collect(context.Background(), stubFetcher{name: "bad", err: errors.New("timeout")}, 5)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCollectRecoversPanics(t *testing.T) {
	items := Collect(context.Background(), stubFetcher{name: "crash", panic: true}, 5)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCollectNilResultBecomesEmpty(t *testing.T) {
	items := Collect(context.Background(), stubFetcher{name: "nil"}, 5)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestValidTitle(t *testing.T) {
	assert.False(t, ValidTitle("abcdefgh"))
	assert.False(t, ValidTitle("  0123456789  "))
	assert.True(t, ValidTitle("01234567890"))
	assert.True(t, ValidTitle("삼성전자 주가 급등 소식입니다"))
	assert.False(t, ValidTitle("삼성전자 주가 급등"))
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://news.naver.com/main/ranking/popularDay.naver", "/article/001/0001", "https://news.naver.com/article/001/0001"},
		{"https://news.naver.com/main/ranking/popularDay.naver", "https://n.news.naver.com/a/1", "https://n.news.naver.com/a/1"},
		{"https://www.reddit.com/r/worldnews/hot.json", "/r/worldnews/comments/x/", "https://www.reddit.com/r/worldnews/comments/x/"},
		{"", "/relative", "/relative"},
		{"https://example.com", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, absoluteURL(c.base, c.ref), "ref=%q", c.ref)
	}
}

func TestNewFetcherDispatch(t *testing.T) {
	specs := []SourceSpec{
		RankingPageSpec{Name: "naver"},
		FeedSpec{Name: "google"},
		HotListingSpec{Name: "reddit"},
		ForumSpec{Name: "hn"},
	}
	for _, spec := range specs {
		f, err := NewFetcher(spec, Options{})
		require.NoError(t, err)
		assert.Equal(t, spec.Label(), f.Name())
	}
}

func TestSourceSpecDefaults(t *testing.T) {
	assert.Equal(t, 5, FeedSpec{}.TargetCount())
	assert.Equal(t, 1, RankingPageSpec{Limit: 1}.TargetCount())
	assert.Equal(t, "hackernews", ForumSpec{}.Kind().String())
	assert.Equal(t, "ranking", RankingPageSpec{}.Kind().String())
}

func TestTruncateRunes(t *testing.T) {
	out := truncateRunes("가나다라마바사", 3)
	assert.Equal(t, "가나다…", out)
	assert.Equal(t, "짧은", truncateRunes(" 짧은 ", 10))
}
