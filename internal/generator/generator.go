// Package generator turns ranked news items into a short post through an LLM.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/metrics"
	"github.com/LJTian/TrendingThreads/internal/retry"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

// SourceNewsLimit is how many top items feed the prompt and travel with the post.
const SourceNewsLimit = 3

var ErrNoItems = errors.New("generator: no news items")

// Thread is one generated post plus the context it was generated from.
type Thread struct {
	RunID       string               `json:"run_id,omitempty"`
	TimeSlot    string               `json:"time_slot"`
	Category    string               `json:"category"`
	Format      schedule.Format      `json:"format"`
	Content     string               `json:"content"`
	SourceNews  []collector.NewsItem `json:"source_news"`
	GeneratedAt string               `json:"generated_at"`
	CharCount   int                  `json:"char_count"`
}

// Completer is a single-prompt text completion backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

type Generator struct {
	completer Completer
	loc       *time.Location
	retry     retry.RetryConfig
	now       func() time.Time
}

func New(c Completer, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{completer: c, loc: loc, retry: retry.Default, now: time.Now}
}

// WithRetry overrides the completion retry policy.
func (g *Generator) WithRetry(cfg retry.RetryConfig) *Generator {
	g.retry = cfg
	return g
}

// Generate writes one post for items in the given slot. The first
// SourceNewsLimit items are used as prompt material.
func (g *Generator) Generate(ctx context.Context, items []collector.NewsItem, category, slot string, format schedule.Format) (*Thread, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if format == "" {
		format = schedule.FormatThread
	}
	top := items
	if len(top) > SourceNewsLimit {
		top = top[:SourceNewsLimit]
	}

	now := g.now().In(g.loc)
	prompt := BuildPrompt(top, category, slot, format, now)
	opts := optionsFor(format)

	var content string
	err := retry.WithRetry(ctx, g.retry, func() error {
		out, err := g.completer.Complete(ctx, prompt, opts)
		if err != nil {
			slog.Warn("completion failed", "provider", g.completer.Name(), "error", err)
			return err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return errors.New("empty completion")
		}
		content = out
		return nil
	})
	if err != nil {
		metrics.RecordGeneration(g.completer.Name(), "error")
		return nil, fmt.Errorf("generate %s thread: %w", slot, err)
	}
	metrics.RecordGeneration(g.completer.Name(), "ok")

	return &Thread{
		TimeSlot:    slot,
		Category:    category,
		Format:      format,
		Content:     content,
		SourceNews:  append([]collector.NewsItem(nil), top...),
		GeneratedAt: now.Format(time.RFC3339),
		CharCount:   utf8.RuneCountInString(content),
	}, nil
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

func optionsFor(format schedule.Format) CompletionOptions {
	if format == schedule.FormatHotIssue {
		return CompletionOptions{MaxTokens: 400, Temperature: 0.4}
	}
	return CompletionOptions{MaxTokens: 300, Temperature: 0.5}
}
