package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

const promptSummaryRunes = 100

// BuildPrompt renders the Korean instruction prompt for format.
func BuildPrompt(items []collector.NewsItem, category, slot string, format schedule.Format, now time.Time) string {
	if format == schedule.FormatHotIssue {
		return hotIssuePrompt(items, now)
	}
	return threadPrompt(items, category, slot, now)
}

func threadPrompt(items []collector.NewsItem, category, slot string, now time.Time) string {
	var news strings.Builder
	for i, it := range items {
		fmt.Fprintf(&news, "%d. %s\n", i+1, it.Title)
		if s := strings.TrimSpace(it.Summary); s != "" {
			fmt.Fprintf(&news, "   요약: %s\n", excerpt(s, promptSummaryRunes))
		}
		source := it.Source
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&news, "   출처: %s\n\n", source)
	}

	return fmt.Sprintf(`다음 %s 관련 최신 뉴스들을 바탕으로 뉴스픽 스타일의 쓰레드를 한국어로 작성해줘.

=== 최신 뉴스 ===
%s
조건:
- 200자 이내 (공백 포함)
- 가장 임팩트 있는 뉴스 1-2개 선별
- 구체적인 숫자나 사실 포함
- 3-4개 짧은 문장으로 구성
- 뉴스픽 스타일: 간결하고 팩트 중심
- 이모지 1-2개만 사용

형식 예시:
📰 [핵심 뉴스 팩트]
💡 [왜 중요한지 인사이트]
🔍 [업계 임팩트나 전망]

시간대: %s (%s)
현재 시각: %s
`, category, news.String(), slot, category, now.Format("2006-01-02 15:04"))
}

func hotIssuePrompt(items []collector.NewsItem, now time.Time) string {
	top := items[0]
	return fmt.Sprintf(`다음 뉴스를 바탕으로 오늘의 가장 핫한 이슈를 친근한 반말체로 300자 이내로 정리해줘.

=== 오늘의 탑 뉴스 ===
제목: %s

조건:
- 300자 이내 (공백 포함)
- 친근하고 자연스러운 반말체
- 왜 이 이슈가 핫한지, 배경과 현재 상황 포함
- 텔레그램에서 복사해서 스레드에 바로 붙여넣을 수 있게 본문만
- 다른 부연설명이나 제목 없이 내용만
- 아이콘이나 이모지 사용하지 말것

현재 시각: %s
`, top.Title, now.Format("2006-01-02 15:04"))
}

func excerpt(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "..."
}
