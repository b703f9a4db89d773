package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GroqAPIKey   string

	// Storage
	DatabasePath   string
	PlanStorageDir string

	// Ghost Config (optional, required for publishing)
	GhostURL      string
	GhostAdminKey string

	// Telegram Config (optional for CLI, required for Bot)
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("FITPLANNER_DB_PATH")
	if databasePath == "" {
		databasePath = "data/fitplanner.db"
	}

	planStorageDir := os.Getenv("PLAN_STORAGE_DIR")
	if planStorageDir == "" {
		planStorageDir = "data/plans"
	}

	// Ghost publishing is optional; both values must be present to use it
	ghostURL := os.Getenv("GHOST_API_URL")
	ghostAdminKey := os.Getenv("GHOST_ADMIN_API_KEY")

	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		GeminiAPIKey:        geminiAPIKey,
		GroqAPIKey:          groqAPIKey,
		DatabasePath:        databasePath,
		PlanStorageDir:      planStorageDir,
		GhostURL:            ghostURL,
		GhostAdminKey:       ghostAdminKey,
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}

// GhostEnabled reports whether publishing to Ghost is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}
