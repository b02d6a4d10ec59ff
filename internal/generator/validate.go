package generator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LJTian/TrendingThreads/internal/schedule"
)

const (
	MinContentRunes = 50
	MaxContentRunes = 300
)

// Validate runs the quality checks on generated content. A failed check is a
// warning for the operator; callers still deliver the post.
func Validate(content string, format schedule.Format) (bool, string) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)

	var problems []string
	switch {
	case n < MinContentRunes:
		problems = append(problems, "너무 짧음")
	case n > MaxContentRunes:
		problems = append(problems, "너무 김")
	}
	if format != schedule.FormatHotIssue {
		if !hasEmoji(content) {
			problems = append(problems, "이모지 없음")
		}
		if !strings.ContainsFunc(content, unicode.IsDigit) {
			problems = append(problems, "구체적 숫자 없음")
		}
	}

	if len(problems) > 0 {
		return false, strings.Join(problems, ", ")
	}
	return true, "검증 통과"
}

func hasEmoji(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.So, r) || (r >= 0x1F300 && r <= 0x1FAFF) {
			return true
		}
	}
	return false
}
