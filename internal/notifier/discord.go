package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/LJTian/TrendingThreads/internal/generator"
)

const (
	discordThreadColor = 0xff6b35
	discordErrorColor  = 0xff0000
)

// Discord posts embeds to a channel webhook. Discord answers 204 on success.
type Discord struct {
	webhookURL string
	opts       Options
	client     *http.Client
}

func NewDiscord(webhookURL string, opts Options) *Discord {
	opts = opts.withDefaults()
	return &Discord{webhookURL: webhookURL, opts: opts, client: &http.Client{Timeout: opts.Timeout}}
}

func (d *Discord) Name() string {
	return "discord"
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

func (d *Discord) Send(ctx context.Context, th *generator.Thread) error {
	if d.webhookURL == "" {
		return errors.New("discord: webhook url not configured")
	}
	return deliver(ctx, d.Name(), d.client, d.opts.Retry, d.webhookURL, buildDiscordPayload(th), http.StatusNoContent)
}

func (d *Discord) NotifyError(ctx context.Context, slot, message string) error {
	if d.webhookURL == "" {
		return errors.New("discord: webhook url not configured")
	}
	payload := discordPayload{
		Content: "🚨 **뉴스 쓰레드 봇에서 오류가 발생했습니다!**",
		Embeds: []discordEmbed{{
			Title:       "❌ 뉴스 쓰레드 봇 오류",
			Description: fmt.Sprintf("시간: %s\n오류: %s", slot, message),
			Color:       discordErrorColor,
			Timestamp:   d.opts.Now().Format(time.RFC3339),
		}},
	}
	return postJSON(ctx, d.client, d.webhookURL, payload, http.StatusNoContent)
}

// SendDailySummary posts the digest of a day's threads as a plain message.
func (d *Discord) SendDailySummary(ctx context.Context, threads []generator.Thread) error {
	if d.webhookURL == "" {
		return errors.New("discord: webhook url not configured")
	}
	if len(threads) == 0 {
		return nil
	}
	return deliver(ctx, d.Name(), d.client, d.opts.Retry, d.webhookURL, discordPayload{Content: DailySummaryText(threads)}, http.StatusNoContent)
}

// buildDiscordPayload renders the embed message for th.
func buildDiscordPayload(th *generator.Thread) discordPayload {
	embed := discordEmbed{
		Title:       fmt.Sprintf("🔥 %s 인기 뉴스 쓰레드", th.TimeSlot),
		Description: th.Content,
		Color:       discordThreadColor,
		Fields: []discordField{
			{Name: "📊 카테고리", Value: th.Category, Inline: true},
			{Name: "📱 글자수", Value: fmt.Sprintf("%d자", utf8.RuneCountInString(th.Content)), Inline: true},
			{Name: "🔥 기반 정보", Value: fmt.Sprintf("상위 %d개 인기 뉴스 기반", len(th.SourceNews)), Inline: true},
		},
		Footer: &discordFooter{Text: "생성 시간: " + th.GeneratedAt},
	}
	if links := markdownLinks(th); links != "" {
		embed.Fields = append(embed.Fields, discordField{
			Name:  "📰 참고 뉴스",
			Value: truncate(links, discordFieldLimit),
		})
	}
	return discordPayload{
		Content: "🚨 **새로운 인기 뉴스 쓰레드가 생성되었습니다!**\n📱 아래 내용을 복사해서 Threads에 올려주세요:",
		Embeds:  []discordEmbed{embed},
	}
}
