package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingEnv is returned by Validate when a required variable is unset.
var ErrMissingEnv = errors.New("missing required environment variables")

const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	ChannelTelegram = "telegram"
	ChannelSlack    = "slack"
	ChannelDiscord  = "discord"
)

type Config struct {
	AppPort       string
	BasicAuthUser string
	BasicAuthPass string
	// SummaryCron schedules the daily digest in the daemon; empty disables it.
	SummaryCron string

	PostgresDSN string
	RedisAddr   string

	SourcesConfig string
	Timezone      string

	LLMProvider  string
	LLMModel     string
	ClaudeAPIKey string
	OpenAIAPIKey string
	GeminiAPIKey string

	DeliveryChannel   string
	TelegramBotToken  string
	TelegramChatID    string
	SlackWebhookURL   string
	DiscordWebhookURL string

	LogDir   string
	LogLevel string

	HTTPTimeout      time.Duration
	UserAgent        string
	FetchConcurrency int
	FetchCacheTTL    time.Duration
}

// Load reads the process environment, after merging a .env file from the working
// directory when one exists. Real environment variables win over .env entries.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "9000"),
		BasicAuthUser:     getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:     getEnv("APP_BASIC_PASS", ""),
		SummaryCron:       getEnv("SUMMARY_CRON", ""),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		SourcesConfig:     getEnv("SOURCES_CONFIG", "configs/sources.json"),
		Timezone:          getEnv("TIMEZONE", "Asia/Seoul"),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderClaude)),
		LLMModel:          getEnv("LLM_MODEL", ""),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		DeliveryChannel:   strings.ToLower(getEnv("DELIVERY_CHANNEL", ChannelTelegram)),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
		SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		LogDir:            getEnv("LOG_DIR", "logs"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 10*time.Second),
		UserAgent:         getEnv("USER_AGENT", ""),
		FetchConcurrency:  getInt("FETCH_CONCURRENCY", 1),
		FetchCacheTTL:     getDuration("FETCH_CACHE_TTL", 10*time.Minute),
	}

	slog.Info("config loaded",
		"port", cfg.AppPort,
		"provider", cfg.LLMProvider,
		"channel", cfg.DeliveryChannel,
		"sources", cfg.SourcesConfig,
		"redis", cfg.RedisAddr != "",
		"postgres", cfg.PostgresDSN != "")
	return cfg
}

// Validate checks the provider and channel selections and that their credentials
// are present. Call it before any network activity.
func (c *Config) Validate() error {
	var missing []string
	switch c.LLMProvider {
	case ProviderClaude:
		missing = appendMissing(missing, "CLAUDE_API_KEY", c.ClaudeAPIKey)
	case ProviderOpenAI:
		missing = appendMissing(missing, "OPENAI_API_KEY", c.OpenAIAPIKey)
	case ProviderGemini:
		missing = appendMissing(missing, "GEMINI_API_KEY", c.GeminiAPIKey)
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.DeliveryChannel {
	case ChannelTelegram:
		missing = appendMissing(missing, "TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
		missing = appendMissing(missing, "TELEGRAM_CHAT_ID", c.TelegramChatID)
	case ChannelSlack:
		missing = appendMissing(missing, "SLACK_WEBHOOK_URL", c.SlackWebhookURL)
	case ChannelDiscord:
		missing = appendMissing(missing, "DISCORD_WEBHOOK_URL", c.DiscordWebhookURL)
	default:
		return fmt.Errorf("unknown DELIVERY_CHANNEL %q", c.DeliveryChannel)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}

// LLMAPIKey returns the key for the selected provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.ClaudeAPIKey
	}
}

// Location resolves the configured zone, falling back to a fixed +09:00 zone when
// the tz database is unavailable.
func (c *Config) Location() *time.Location {
	return loadLocation(c.Timezone)
}

func loadLocation(name string) *time.Location {
	if name == "" {
		name = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("load timezone failed, using fixed +09:00", "zone", name, "error", err)
		return time.FixedZone("KST", 9*3600)
	}
	return loc
}

func appendMissing(missing []string, key, val string) []string {
	if strings.TrimSpace(val) == "" {
		return append(missing, key)
	}
	return missing
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
