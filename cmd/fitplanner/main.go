package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fitplanner/internal/app"
	"fitplanner/internal/clipper"
	"fitplanner/internal/config"
	"fitplanner/internal/database"
	"fitplanner/internal/ghost"
	"fitplanner/internal/llm"
	"fitplanner/internal/metrics"
	"fitplanner/internal/planner"
	"fitplanner/internal/recovery"
	"fitplanner/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

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

	mealPlanner := planner.NewPlanner(geminiClient, engine, planRepo, planStore)
	recipeClipper := clipper.NewClipper(ghostClient, llm.NewGroqClient(cfg), engine)

	application := app.NewApp(
		ghostClient,
		engine,
		metricsStore,
		mealPlanner,
		recipeClipper,
		planStore,
		cfg,
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan":
		if len(os.Args) < 3 {
			log.Fatal("Usage: fitplanner plan \"<request>\"")
		}
		if err := application.GenerateMealPlan(ctx, os.Args[2]); err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
	case "recover":
		if len(os.Args) < 3 {
			log.Fatal("Usage: fitplanner recover <file>")
		}
		if err := application.RecoverFile(os.Args[2]); err != nil {
			log.Fatalf("Recovery failed: %v", err)
		}
	case "clip":
		if len(os.Args) < 3 {
			log.Fatal("Usage: fitplanner clip <url>")
		}
		if err := application.ClipRecipe(ctx, os.Args[2]); err != nil {
			log.Fatalf("Clip failed: %v", err)
		}
	case "publish":
		if len(os.Args) < 3 {
			log.Fatal("Usage: fitplanner publish <plan-id>")
		}
		if err := application.PublishPlan(os.Args[2]); err != nil {
			log.Fatalf("Publish failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: fitplanner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan \"<request>\"     Generate a weekly meal plan")
	fmt.Println("  recover <file>       Replay a captured model response through the recovery engine")
	fmt.Println("  clip <url>           Extract a recipe from a web page")
	fmt.Println("  publish <plan-id>    Publish a stored plan to Ghost")
	fmt.Println("  metrics-cleanup      Remove old metric records")
}
