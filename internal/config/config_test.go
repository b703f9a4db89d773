package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		os.Unsetenv("FITPLANNER_DB_PATH")
		os.Unsetenv("PLAN_STORAGE_DIR")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
		if cfg.DatabasePath != "data/fitplanner.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.PlanStorageDir != "data/plans" {
			t.Errorf("Expected default PlanStorageDir, got '%s'", cfg.PlanStorageDir)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("FITPLANNER_DB_PATH", "/tmp/test.db")
		setEnv("PLAN_STORAGE_DIR", "/tmp/plans")
		setEnv("TELEGRAM_ALLOW_USER_ID", "12345")
		setEnv("TELEGRAM_WEBHOOK_URL", "https://bot.example.com/webhook")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "/tmp/test.db" {
			t.Errorf("Expected DatabasePath '/tmp/test.db', got '%s'", cfg.DatabasePath)
		}
		if cfg.PlanStorageDir != "/tmp/plans" {
			t.Errorf("Expected PlanStorageDir '/tmp/plans', got '%s'", cfg.PlanStorageDir)
		}
		if cfg.TelegramAllowUserID != 12345 {
			t.Errorf("Expected TelegramAllowUserID 12345, got %d", cfg.TelegramAllowUserID)
		}
		if cfg.TelegramWebhookURL != "https://bot.example.com/webhook" {
			t.Errorf("Expected TelegramWebhookURL to be set, got '%s'", cfg.TelegramWebhookURL)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv("GROQ_API_KEY", "groq_key")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGroqAPIKey", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("GROQ_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GROQ_API_KEY, got nil")
		}
		expectedError := "GROQ_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("GhostOptional", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		os.Unsetenv("GHOST_API_URL")
		os.Unsetenv("GHOST_ADMIN_API_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error without Ghost config, got %v", err)
		}
		if cfg.GhostEnabled() {
			t.Error("Expected GhostEnabled to be false")
		}

		setEnv("GHOST_API_URL", "http://ghost.test")
		setEnv("GHOST_ADMIN_API_KEY", "id:secret")
		cfg, err = NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !cfg.GhostEnabled() {
			t.Error("Expected GhostEnabled to be true")
		}
	})
}
