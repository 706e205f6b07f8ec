// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Feed format values accepted by FEED_FORMAT.
const (
	FeedFormatJSON = "json"
	FeedFormatRSS  = "rss"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath        string
	LogLevel            string
	ListenAddr          string
	FeedFormat          string
	FeedLimit           int
	FeedUserAgent       string
	FetchTimeoutSeconds int
	FetchWorkers        int
	ScanIntervalMinutes int
	TelegramBotToken    string
	TelegramChatID      int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/redwatch.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		ListenAddr:       envOrDefault("LISTEN_ADDR", ":8080"),
		FeedFormat:       envOrDefault("FEED_FORMAT", FeedFormatJSON),
		FeedUserAgent:    envOrDefault("FEED_USER_AGENT", "redwatch/1.0"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.FeedFormat != FeedFormatJSON && cfg.FeedFormat != FeedFormatRSS {
		return nil, fmt.Errorf("FEED_FORMAT must be %q or %q, got %q", FeedFormatJSON, FeedFormatRSS, cfg.FeedFormat)
	}

	var err error
	if cfg.FeedLimit, err = envIntOrDefault("FEED_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.FetchTimeoutSeconds, err = envIntOrDefault("FETCH_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.FetchWorkers, err = envIntOrDefault("FETCH_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.ScanIntervalMinutes, err = envIntOrDefault("SCAN_INTERVAL_MINUTES", 0); err != nil {
		return nil, err
	}

	if cfg.FeedLimit <= 0 || cfg.FeedLimit > 100 {
		return nil, fmt.Errorf("FEED_LIMIT must be between 1 and 100, got %d", cfg.FeedLimit)
	}
	if cfg.FetchWorkers <= 0 {
		return nil, fmt.Errorf("FETCH_WORKERS must be positive, got %d", cfg.FetchWorkers)
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
