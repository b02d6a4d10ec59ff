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

const telegramAPI = "https://api.telegram.org"

// Telegram sends through the Bot API sendMessage method.
type Telegram struct {
	// BaseURL defaults to the public Bot API; tests point it elsewhere.
	BaseURL string

	token  string
	chatID string
	opts   Options
	client *http.Client
}

func NewTelegram(token, chatID string, opts Options) *Telegram {
	opts = opts.withDefaults()
	return &Telegram{
		BaseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

func (t *Telegram) Send(ctx context.Context, th *generator.Thread) error {
	if t.token == "" || t.chatID == "" {
		return errors.New("telegram: bot token or chat id not configured")
	}
	msg := telegramMessage{
		ChatID:                t.chatID,
		Text:                  TelegramText(th),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	return deliver(ctx, t.Name(), t.client, t.opts.Retry, t.endpoint(), msg, http.StatusOK)
}

func (t *Telegram) NotifyError(ctx context.Context, slot, message string) error {
	if t.token == "" || t.chatID == "" {
		return errors.New("telegram: bot token or chat id not configured")
	}
	text := fmt.Sprintf(`🚨 **뉴스 쓰레드 봇 오류**

⏰ 시간: %s
❌ 오류: %s
📅 발생시간: %s

🔧 관리자 확인이 필요합니다.`, slot, message, t.opts.Now().Format("2006-01-02 15:04:05"))
	return postJSON(ctx, t.client, t.endpoint(), telegramMessage{ChatID: t.chatID, Text: text, ParseMode: "Markdown"}, http.StatusOK)
}

func (t *Telegram) SendDailySummary(ctx context.Context, threads []generator.Thread) error {
	if len(threads) == 0 {
		return nil
	}
	msg := telegramMessage{ChatID: t.chatID, Text: DailySummaryText(threads), ParseMode: "Markdown"}
	return deliver(ctx, t.Name(), t.client, t.opts.Retry, t.endpoint(), msg, http.StatusOK)
}

func (t *Telegram) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.BaseURL, "/"), t.token)
}

// TelegramText renders the copy-ready message body.
func TelegramText(th *generator.Thread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 %s 인기 뉴스 쓰레드\n\n", th.TimeSlot)
	fmt.Fprintf(&b, "📱 **쓰레드 내용:**\n%s\n\n", th.Content)
	b.WriteString("📊 **정보:**\n")
	fmt.Fprintf(&b, "- 카테고리: %s\n", th.Category)
	fmt.Fprintf(&b, "- 글자수: %d자\n", utf8.RuneCountInString(th.Content))
	fmt.Fprintf(&b, "- 생성시간: %s\n\n", shortTime(th.GeneratedAt))
	b.WriteString("📰 **참고 뉴스:**\n")
	b.WriteString(markdownLinks(th))
	b.WriteString("\n📱 위 내용을 복사해서 Threads에 올려주세요!")
	return b.String()
}
