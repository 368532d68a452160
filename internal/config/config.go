package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// OpenRouter settings
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// Telegram settings
	TelegramBotToken  string
	TelegramChatID    string
	TelegramParseMode string

	// Feed settings
	SourcesFile           string
	MaxFeedItemsPerSource int
	MaxArticlesPerRun     int

	// HTTP settings
	RequestTimeout  time.Duration
	HTTPConcurrency int
	UserAgent       string

	// Delivery retry settings
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load builds the configuration from environment variables with code defaults.
func Load() *Config {
	cfg := &Config{
		// Default values
		OpenRouterModel:       "openai/gpt-oss-20b",
		OpenRouterBaseURL:     "https://openrouter.ai/api/v1",
		OpenRouterAppName:     "AI News Agent",
		TelegramParseMode:     "HTML",
		SourcesFile:           "data/news-sources.yaml",
		MaxFeedItemsPerSource: 50,
		MaxArticlesPerRun:     50,
		RequestTimeout:        20 * time.Second,
		HTTPConcurrency:       8,
		UserAgent:             "AINewsAgent/0.1",
		RetryAttempts:         3,
		RetryDelay:            1 * time.Second,
	}

	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterModel = getEnvOrDefault("OPENROUTER_MODEL", cfg.OpenRouterModel)
	cfg.OpenRouterBaseURL = getEnvOrDefault("OPENROUTER_BASE_URL", cfg.OpenRouterBaseURL)
	cfg.OpenRouterSiteURL = os.Getenv("OPENROUTER_SITE_URL")
	cfg.OpenRouterAppName = getEnvOrDefault("OPENROUTER_APP_NAME", cfg.OpenRouterAppName)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.TelegramParseMode = getEnvOrDefault("TELEGRAM_PARSE_MODE", cfg.TelegramParseMode)

	cfg.SourcesFile = getEnvOrDefault("SOURCES_FILE", cfg.SourcesFile)
	cfg.MaxFeedItemsPerSource = getEnvIntOrDefault("MAX_FEED_ITEMS_PER_SOURCE", cfg.MaxFeedItemsPerSource)
	cfg.MaxArticlesPerRun = getEnvIntOrDefault("MAX_ARTICLES_PER_RUN", cfg.MaxArticlesPerRun)

	if v := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	cfg.HTTPConcurrency = getEnvIntOrDefault("HTTP_CONCURRENCY", cfg.HTTPConcurrency)
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)

	return cfg
}

// SummaryConcurrency is the smaller limiter used for the summarization stage.
func (c *Config) SummaryConcurrency() int {
	if c.HTTPConcurrency < 4 {
		return c.HTTPConcurrency
	}
	return 4
}

// MissingRequired reports the env variables that must be set for a real run.
// Dry runs never call Telegram, so credentials are optional there.
func (c *Config) MissingRequired(dryRun bool) []string {
	var missing []string
	if !dryRun {
		if c.TelegramBotToken == "" {
			missing = append(missing, "TELEGRAM_BOT_TOKEN")
		}
		if c.TelegramChatID == "" {
			missing = append(missing, "TELEGRAM_CHAT_ID")
		}
	}
	return missing
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
