package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitplanner/internal/clipper"
	"fitplanner/internal/config"
	"fitplanner/internal/database"
	"fitplanner/internal/ghost"
	"fitplanner/internal/llm"
	"fitplanner/internal/metrics"
	"fitplanner/internal/planner"
	"fitplanner/internal/recovery"
	"fitplanner/internal/storage"
	"fitplanner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set")
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure (LLMs)
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	groqClient := llm.NewGroqClient(cfg)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Initialize the recovery engine and stores
	engine := recovery.NewEngine(recovery.Options{
		Logger: log.New(os.Stderr, "recovery: ", log.LstdFlags),
	})

	planStore, err := storage.NewPlanStore(cfg.PlanStorageDir)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	var ghostClient ghost.Client
	if cfg.GhostEnabled() {
		ghostClient = ghost.NewClient(cfg)
	}

	metricsStore := metrics.NewStore(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	sessions := telegram.NewSessionRepository(db.SQL)

	// 4. Initialize Services
	mealPlanner := planner.NewPlanner(geminiClient, engine, planRepo, planStore)
	recipeClipper := clipper.NewClipper(ghostClient, groqClient, engine)

	// 5. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, mealPlanner, recipeClipper, metricsStore, sessions, planRepo)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 6. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
