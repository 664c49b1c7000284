// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"homework_bot/internal/practicum"
)

// Config holds the application configuration.
type Config struct {
	PracticumToken string
	TelegramToken  string
	ChatID         int64
	Endpoint       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// Load reads configuration from a .env file (if present) and environment
// variables. The two tokens and the chat ID are required; everything else
// has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	practicumToken := os.Getenv("PRACTICUM_TOKEN")
	if practicumToken == "" {
		return nil, fmt.Errorf("PRACTICUM_TOKEN is required")
	}

	telegramToken := os.Getenv("TELEGRAM_TOKEN")
	if telegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	rawChatID := os.Getenv("TELEGRAM_CHAT_ID")
	if rawChatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", rawChatID, err)
	}

	endpoint := os.Getenv("ENDPOINT")
	if endpoint == "" {
		endpoint = practicum.DefaultEndpoint
	}

	pollInterval, err := durationEnv("POLL_INTERVAL", 600*time.Second)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := durationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		PracticumToken: practicumToken,
		TelegramToken:  telegramToken,
		ChatID:         chatID,
		Endpoint:       endpoint,
		PollInterval:   pollInterval,
		RequestTimeout: requestTimeout,
		LogLevel:       logLevel,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return d, nil
}

// IsChatAllowed reports whether commands from the chat may drive the bot.
// Only the configured notification chat is allowed.
func (c *Config) IsChatAllowed(chatID int64) bool {
	return chatID == c.ChatID
}
