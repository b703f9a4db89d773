package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"fitplanner/internal/clipper"
	"fitplanner/internal/config"
	"fitplanner/internal/ghost"
	"fitplanner/internal/metrics"
	"fitplanner/internal/plan"
	"fitplanner/internal/planner"
	"fitplanner/internal/recovery"
	"fitplanner/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	ghostClient   ghost.Client
	engine        *recovery.Engine
	metricsStore  *metrics.Store
	mealPlanner   *planner.Planner
	recipeClipper *clipper.Clipper
	planStore     *storage.PlanStore
	cfg           *config.Config
}

// NewApp creates and initializes a new App instance.
func NewApp(
	ghostClient ghost.Client,
	engine *recovery.Engine,
	metricsStore *metrics.Store,
	mealPlanner *planner.Planner,
	recipeClipper *clipper.Clipper,
	planStore *storage.PlanStore,
	cfg *config.Config,
) *App {
	return &App{
		ghostClient:   ghostClient,
		engine:        engine,
		metricsStore:  metricsStore,
		mealPlanner:   mealPlanner,
		recipeClipper: recipeClipper,
		planStore:     planStore,
		cfg:           cfg,
	}
}

// GenerateMealPlan creates a meal plan based on user request and prints it.
func (a *App) GenerateMealPlan(ctx context.Context, request string) error {
	fmt.Printf("Generating meal plan for: \"%s\"...\n", request)

	weekly, metas, err := a.mealPlanner.GeneratePlan(ctx, "cli", request)

	// Record metrics for every attempt, including the failed ones
	for _, meta := range metas {
		if recErr := a.metricsStore.RecordMeta(ctx, meta); recErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.Stage, recErr)
		}
		if meta.RecoveryStrategy != "" {
			_ = a.metricsStore.RecordRecovery(ctx, metrics.MapRecovery(meta.RecoveryStrategy, meta.Latency))
		}
	}

	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	printPlan(weekly)
	return nil
}

// RecoverFile replays a captured raw model response through the recovery
// engine and prints the result. Useful for debugging responses that failed
// in production.
func (a *App) RecoverFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	weekly, strategy := a.engine.RecoverMealPlanWithStrategy(raw)
	if weekly == nil {
		return fmt.Errorf("input could not be recovered (strategy: %s)", strategy)
	}

	fmt.Printf("Recovered via strategy: %s\n\n", strategy)
	out, err := json.MarshalIndent(weekly, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recovered plan: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// ClipRecipe extracts a recipe from a URL. When Ghost is configured the
// recipe is published there, otherwise it is printed.
func (a *App) ClipRecipe(ctx context.Context, url string) error {
	fmt.Printf("Clipping recipe from %s...\n", url)

	if a.cfg.GhostEnabled() {
		post, err := a.recipeClipper.ClipURL(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to clip recipe: %w", err)
		}
		fmt.Printf("Saved to Ghost: %s (%s)\n", post.Title, post.ID)
		return nil
	}

	recipe, err := a.recipeClipper.Clip(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to clip recipe: %w", err)
	}

	fmt.Printf("\n=== %s ===\n", recipe.Name)
	fmt.Println("\nIngredients:")
	for _, ing := range recipe.Ingredients {
		fmt.Printf("- %s\n", ing)
	}
	fmt.Println("\nInstructions:")
	for i, step := range recipe.Instructions {
		fmt.Printf("%d. %s\n", i+1, step)
	}
	if recipe.Nutrition.Calories > 0 {
		fmt.Printf("\n~%.0f kcal per serving\n", recipe.Nutrition.Calories)
	}
	return nil
}

// PublishPlan loads a stored plan by ID and publishes it to Ghost.
func (a *App) PublishPlan(planID string) error {
	if !a.cfg.GhostEnabled() {
		return fmt.Errorf("ghost publishing is not configured")
	}
	if !a.planStore.Exists(planID) {
		return fmt.Errorf("no stored plan with ID %s", planID)
	}

	weekly, err := a.planStore.Load(planID)
	if err != nil {
		return fmt.Errorf("failed to load plan %s: %w", planID, err)
	}

	post, err := a.ghostClient.PublishPlan(weekly, true)
	if err != nil {
		return fmt.Errorf("failed to publish plan: %w", err)
	}
	fmt.Printf("Published: %s (%s)\n", post.Title, post.ID)
	return nil
}

func printPlan(weekly *plan.WeeklyPlan) {
	fmt.Println("\n=== WEEKLY MEAL PLAN ===")
	for _, day := range weekly.Days {
		fmt.Printf("%s\n", day.Day)
		for _, meal := range day.Meals {
			fmt.Printf("  % -10s: %s", meal.MealType, meal.Recipe.Name)
			if meal.Recipe.Nutrition.Calories > 0 {
				fmt.Printf(" (~%.0f kcal)", meal.Recipe.Nutrition.Calories)
			}
			fmt.Println()
		}
	}

	fmt.Println("\n=== SHOPPING LIST ===")
	categories := make([]string, 0, len(weekly.ShoppingList))
	for category, items := range weekly.ShoppingList {
		if len(items) > 0 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("%s:\n", category)
		for _, item := range weekly.ShoppingList[category] {
			fmt.Printf("- %s\n", item)
		}
	}

	if len(weekly.MealPrepTips) > 0 {
		fmt.Println("\n=== MEAL PREP TIPS ===")
		for _, tip := range weekly.MealPrepTips {
			fmt.Printf("- %s\n", tip)
		}
	}
}
