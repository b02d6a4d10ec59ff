// Package notifier delivers generated threads and operator alerts to a chat
// channel.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LJTian/TrendingThreads/internal/config"
	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/metrics"
	"github.com/LJTian/TrendingThreads/internal/retry"
)

const defaultTimeout = 10 * time.Second

// Notifier posts to exactly one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, t *generator.Thread) error
	NotifyError(ctx context.Context, slot, message string) error
}

// SummarySender can post a digest of a day's threads.
type SummarySender interface {
	SendDailySummary(ctx context.Context, threads []generator.Thread) error
}

// Options are shared by every channel.
type Options struct {
	Timeout time.Duration
	Retry   retry.RetryConfig
	// Now stamps error notifications; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = retry.Default
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// New builds the notifier selected by cfg.DeliveryChannel.
func New(cfg *config.Config, opts Options) (Notifier, error) {
	switch cfg.DeliveryChannel {
	case config.ChannelTelegram:
		return NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, opts), nil
	case config.ChannelSlack:
		return NewSlack(cfg.SlackWebhookURL, opts), nil
	case config.ChannelDiscord:
		return NewDiscord(cfg.DiscordWebhookURL, opts), nil
	default:
		return nil, fmt.Errorf("unknown delivery channel %q", cfg.DeliveryChannel)
	}
}

// deliver posts with retries and records the outcome.
func deliver(ctx context.Context, channel string, client *http.Client, cfg retry.RetryConfig, url string, payload any, want int) error {
	err := retry.WithRetry(ctx, cfg, func() error {
		return postJSON(ctx, client, url, payload, want)
	})
	if err != nil {
		metrics.RecordDelivery(channel, "error")
		return fmt.Errorf("%s delivery: %w", channel, err)
	}
	metrics.RecordDelivery(channel, "ok")
	slog.Info("thread delivered", "channel", channel)
	return nil
}

// postJSON sends one request; 4xx responses other than 429 are permanent.
func postJSON(ctx context.Context, client *http.Client, url string, payload any, want int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == want {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}
