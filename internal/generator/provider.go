package generator

import (
	"context"
	"fmt"

	"github.com/LJTian/TrendingThreads/internal/config"
)

// NewCompleter builds the completion backend selected by cfg.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderClaude:
		return NewClaudeCompleter(cfg.ClaudeAPIKey, cfg.LLMModel), nil
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.LLMModel), nil
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
