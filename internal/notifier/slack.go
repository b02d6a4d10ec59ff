package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/LJTian/TrendingThreads/internal/generator"
)

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	opts       Options
	client     *http.Client
}

func NewSlack(webhookURL string, opts Options) *Slack {
	opts = opts.withDefaults()
	return &Slack{webhookURL: webhookURL, opts: opts, client: &http.Client{Timeout: opts.Timeout}}
}

func (s *Slack) Name() string {
	return "slack"
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color,omitempty"`
	Title  string       `json:"title,omitempty"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *Slack) Send(ctx context.Context, th *generator.Thread) error {
	if s.webhookURL == "" {
		return errors.New("slack: webhook url not configured")
	}
	return deliver(ctx, s.Name(), s.client, s.opts.Retry, s.webhookURL, buildSlackMessage(th), http.StatusOK)
}

func (s *Slack) NotifyError(ctx context.Context, slot, message string) error {
	if s.webhookURL == "" {
		return errors.New("slack: webhook url not configured")
	}
	msg := slackMessage{
		Text: "🚨 뉴스 쓰레드 봇 오류 발생!",
		Attachments: []slackAttachment{{
			Color:  "danger",
			Title:  "시간: " + slot,
			Text:   "오류: " + message,
			Footer: "봇 관리자 확인 필요 · " + s.opts.Now().Format("2006-01-02 15:04:05"),
		}},
	}
	return postJSON(ctx, s.client, s.webhookURL, msg, http.StatusOK)
}

func (s *Slack) SendDailySummary(ctx context.Context, threads []generator.Thread) error {
	if len(threads) == 0 {
		return nil
	}
	return deliver(ctx, s.Name(), s.client, s.opts.Retry, s.webhookURL, slackMessage{Text: DailySummaryText(threads)}, http.StatusOK)
}

// buildSlackMessage renders the attachment message for th.
func buildSlackMessage(th *generator.Thread) slackMessage {
	msg := slackMessage{
		Text: fmt.Sprintf("🔥 %s 인기 뉴스 쓰레드 생성!", th.TimeSlot),
		Attachments: []slackAttachment{{
			Color: "good",
			Title: fmt.Sprintf("📱 %s - %s", th.Category, th.TimeSlot),
			Text:  th.Content,
			Fields: []slackField{
				{Title: "글자수", Value: fmt.Sprintf("%d자", utf8.RuneCountInString(th.Content)), Short: true},
				{Title: "생성시간", Value: shortTime(th.GeneratedAt), Short: true},
			},
			Footer: "자동 뉴스 쓰레드 봇",
		}},
	}

	var links strings.Builder
	for i, it := range sourceNews(th) {
		fmt.Fprintf(&links, "%d. <%s|%s> (인기도: %s)\n", i+1, it.Link, it.Title, score(it))
	}
	if links.Len() > 0 {
		msg.Attachments = append(msg.Attachments, slackAttachment{
			Color:  "#ff6b35",
			Title:  "📰 참고 뉴스",
			Text:   links.String(),
			Footer: "이 링크들을 참고해서 쓰레드가 생성되었습니다",
		})
	}
	return msg
}
