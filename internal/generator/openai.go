package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/LJTian/TrendingThreads/internal/retry"
)

const (
	// claudeBaseURL is Anthropic's OpenAI-compatible endpoint.
	claudeBaseURL = "https://api.anthropic.com/v1"

	DefaultClaudeModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel = openai.GPT4oMini
)

// ChatCompleter talks to any OpenAI-compatible chat completion API.
type ChatCompleter struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAICompleter(apiKey, model string) *ChatCompleter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &ChatCompleter{name: "openai", model: model, client: openai.NewClient(apiKey)}
}

func NewClaudeCompleter(apiKey, model string) *ChatCompleter {
	return newChatCompleter("claude", apiKey, claudeBaseURL, model)
}

func newChatCompleter(name, apiKey, baseURL, model string) *ChatCompleter {
	if model == "" {
		model = DefaultClaudeModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &ChatCompleter{name: name, model: model, client: openai.NewClientWithConfig(cfg)}
}

func (c *ChatCompleter) Name() string {
	return c.name
}

func (c *ChatCompleter) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && isPermanentStatus(apiErr.HTTPStatusCode) {
			return "", retry.Permanent(fmt.Errorf("%s: %w", c.name, err))
		}
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", c.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func isPermanentStatus(code int) bool {
	return code == http.StatusBadRequest || code == http.StatusUnauthorized ||
		code == http.StatusForbidden || code == http.StatusNotFound
}
