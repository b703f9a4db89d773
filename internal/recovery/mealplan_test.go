package recovery

import (
	"errors"
	"testing"

	"fitplanner/internal/plan"
)

const cleanPlanJSON = `{
	"weeklyPlan": [
		{
			"day": "Monday",
			"meals": [
				{
					"mealType": "breakfast",
					"time": "8:00 AM",
					"recipe": {
						"name": "Overnight Oats",
						"ingredients": ["Rolled oats", "Greek yogurt", "Blueberries"],
						"instructions": ["Combine everything", "Refrigerate overnight"],
						"nutrition": {"calories": 350, "protein": 20, "carbs": 45, "fats": 10}
					}
				}
			],
			"dailyNutrition": {"calories": 350, "protein": 20, "carbs": 45, "fats": 10}
		}
	],
	"shoppingList": {"grains": ["Rolled oats"], "dairy": ["Greek yogurt"], "produce": ["Blueberries"]},
	"mealPrepTips": ["Prep oats in batches"]
}`

func TestRecoverMealPlanParsed(t *testing.T) {
	engine := NewEngine(Options{})

	p, strategy := engine.RecoverMealPlanWithStrategy(cleanPlanJSON)
	if p == nil {
		t.Fatal("Expected a plan, got nil")
	}
	if strategy != StrategyParsed {
		t.Errorf("Expected strategy %q, got %q", StrategyParsed, strategy)
	}
	if got := p.FirstRecipeName(); got != "Overnight Oats" {
		t.Errorf("Expected first recipe \"Overnight Oats\", got %q", got)
	}
	if p.ID == "" {
		t.Error("Expected a generated plan ID")
	}
	if p.Days[0].DailyNutrition.Calories != 350 {
		t.Errorf("Expected 350 calories, got %v", p.Days[0].DailyNutrition.Calories)
	}
}

func TestRecoverMealPlanTypedPassthrough(t *testing.T) {
	engine := NewEngine(Options{})
	input := &plan.WeeklyPlan{
		Days: []plan.DayPlan{{
			Day:   "Monday",
			Meals: []plan.Meal{{MealType: "breakfast", Recipe: plan.Recipe{Name: "Shakshuka"}}},
		}},
	}

	p, strategy := engine.RecoverMealPlanWithStrategy(input)
	if p != input {
		t.Error("Expected a typed plan to pass through unchanged")
	}
	if strategy != StrategyParsed {
		t.Errorf("Expected strategy %q, got %q", StrategyParsed, strategy)
	}
	if p.ID == "" {
		t.Error("Expected a generated plan ID")
	}
}

func TestRecoverMealPlanRejectsPlaceholder(t *testing.T) {
	engine := NewEngine(Options{})
	scaffolding := map[string]any{
		"weeklyPlan": []any{
			map[string]any{
				"day": "Monday",
				"meals": []any{
					map[string]any{
						"mealType": "breakfast",
						"recipe":   map[string]any{"name": "Recipe Name"},
					},
				},
			},
		},
	}

	p, strategy := engine.RecoverMealPlanWithStrategy(scaffolding)
	if p != nil {
		t.Errorf("Expected nil for placeholder scaffolding, got %v", p)
	}
	if strategy != StrategyNone {
		t.Errorf("Expected strategy %q, got %q", StrategyNone, strategy)
	}
}

func TestRecoverMealPlanFallsBackToMining(t *testing.T) {
	engine := NewEngine(Options{})
	// The JSON parses but only echoes prompt scaffolding; the prose below it
	// carries the real content.
	input := `{"weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "breakfast", "recipe": {"name": "Recipe Name"}}]}]}

Breakfast: Veggie Omelette
Lunch: Grilled Chicken Salad
Dinner: Baked Salmon Bowl`

	p, strategy := engine.RecoverMealPlanWithStrategy(input)
	if p == nil {
		t.Fatal("Expected a mined plan, got nil")
	}
	if strategy != StrategyTextMining {
		t.Errorf("Expected strategy %q, got %q", StrategyTextMining, strategy)
	}
	if len(p.Days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(p.Days))
	}
	if got := p.FirstRecipeName(); got != "Veggie Omelette" {
		t.Errorf("Expected mined breakfast \"Veggie Omelette\", got %q", got)
	}
}

func TestRecoverMealPlanCustomMarkers(t *testing.T) {
	engine := NewEngine(Options{PlaceholderMarkers: []string{"Sample"}})
	input := map[string]any{
		"weeklyPlan": []any{
			map[string]any{
				"day": "Monday",
				"meals": []any{
					map[string]any{
						"mealType": "lunch",
						"recipe":   map[string]any{"name": "Sample Dish"},
					},
				},
			},
		},
	}

	if p := engine.RecoverMealPlan(input); p != nil {
		t.Errorf("Expected custom marker to reject the plan, got %v", p)
	}
}

func TestRecoverMealPlanNeverErrors(t *testing.T) {
	engine := NewEngine(Options{})
	for _, input := range []any{nil, "", "   ", "no structure at all, sorry"} {
		if p := engine.RecoverMealPlan(input); p != nil {
			t.Errorf("Expected nil for %q, got %v", input, p)
		}
	}
}

func TestExtractionEmptyErrorAlias(t *testing.T) {
	engine := NewEngine(Options{})

	_, err := engine.miner.ExtractWeeklyPlan("just some words with no structure")
	if err == nil {
		t.Fatal("Expected an error for empty extraction")
	}

	var empty *ExtractionEmptyError
	if !errors.As(err, &empty) {
		t.Errorf("Expected ExtractionEmptyError, got %T", err)
	}
}
