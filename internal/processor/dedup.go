package processor

import (
	"strings"
	"unicode"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/metrics"
)

// DedupeTitles keeps an item only if its title-token Jaccard similarity against
// every already kept title is at most threshold. Quadratic, fine for a few dozen
// candidates.
func DedupeTitles(items []collector.NewsItem, threshold float64) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	kept := make([]map[string]struct{}, 0, len(items))
	for _, it := range items {
		tokens := tokenSet(it.Title)
		dup := false
		for _, k := range kept {
			if jaccard(tokens, k) > threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, tokens)
		out = append(out, it)
	}
	metrics.RecordDuplicates("title", len(items)-len(out))
	return out
}

// TitleSimilarity is the Jaccard similarity of the lower-cased word sets of a and b.
func TitleSimilarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

func jaccard(left, right map[string]struct{}) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	intersection := 0
	for token := range left {
		if _, ok := right[token]; ok {
			intersection++
		}
	}
	union := len(left) + len(right) - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(title string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
