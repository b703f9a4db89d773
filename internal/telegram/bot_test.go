package telegram

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"fitplanner/internal/plan"
	"fitplanner/internal/planner"
)

func testWeeklyPlan() *plan.WeeklyPlan {
	return &plan.WeeklyPlan{
		ID: "plan-123",
		Days: []plan.DayPlan{
			{
				Day: "Monday",
				Meals: []plan.Meal{
					{
						MealType: "breakfast",
						Time:     "8:00 AM",
						Recipe: plan.Recipe{
							Name:      "Overnight Oats",
							Nutrition: plan.Nutrition{Calories: 350},
						},
					},
					{
						MealType: "lunch",
						Time:     "12:30 PM",
						Recipe: plan.Recipe{
							Name:      "Grilled Chicken Salad",
							Nutrition: plan.Nutrition{Calories: 520},
						},
					},
				},
				DailyNutrition: plan.Nutrition{Calories: 870},
			},
			{
				Day: "Tuesday",
				Meals: []plan.Meal{
					{
						MealType: "breakfast",
						Recipe:   plan.Recipe{Name: "Shakshuka"},
					},
				},
			},
		},
		ShoppingList: map[string][]string{
			"protein": {"Chicken breast", "Eggs"},
			"produce": {"Spinach"},
			"grains":  {},
			"dairy":   {},
			"other":   {},
		},
		MealPrepTips: []string{"Cook grains in bulk on Sunday"},
	}
}

func TestFormatPlanMarkdownParts(t *testing.T) {
	planOutput, shoppingOutput := formatPlanMarkdownParts(testWeeklyPlan())

	// Check Plan Header
	if !strings.Contains(planOutput, "📅 *Weekly Meal Plan*") {
		t.Error("Missing plan header")
	}

	// Check Days and meals
	if !strings.Contains(planOutput, "*Monday*") {
		t.Error("Missing Monday heading")
	}
	if !strings.Contains(planOutput, "• breakfast: Overnight Oats (~350 kcal)") {
		t.Error("Missing Monday breakfast with calories")
	}
	if !strings.Contains(planOutput, "• lunch: Grilled Chicken Salad (~520 kcal)") {
		t.Error("Missing Monday lunch")
	}
	if !strings.Contains(planOutput, "_Daily total: ~870 kcal_") {
		t.Error("Missing daily total for Monday")
	}

	// Tuesday's meal has no nutrition; the calorie suffix must be absent
	if !strings.Contains(planOutput, "• breakfast: Shakshuka\n") {
		t.Error("Missing Tuesday breakfast without calorie suffix")
	}

	// Check Meal Prep Tips
	if !strings.Contains(planOutput, "💡 *Meal Prep Tips*") {
		t.Error("Missing meal prep tips header")
	}
	if !strings.Contains(planOutput, "• Cook grains in bulk on Sunday") {
		t.Error("Missing meal prep tip")
	}

	// Check Shopping List grouping
	if !strings.Contains(shoppingOutput, "🛒 *Shopping List*") {
		t.Error("Missing shopping list header")
	}
	if !strings.Contains(shoppingOutput, "*Protein*") {
		t.Error("Missing protein category heading")
	}
	if !strings.Contains(shoppingOutput, "• Chicken breast") {
		t.Error("Missing shopping item")
	}
	if strings.Contains(shoppingOutput, "*Dairy*") {
		t.Error("Empty categories should be omitted")
	}
}

func TestFormatRecentPlans(t *testing.T) {
	data, err := json.Marshal(testWeeklyPlan())
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}

	stored := []planner.StoredPlan{
		{
			PlanID:    "plan-123",
			UserID:    "user-1",
			PlanData:  data,
			CreatedAt: time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
		},
		{
			PlanID:    "plan-99",
			UserID:    "user-1",
			PlanData:  []byte("not json"),
			CreatedAt: time.Date(2026, 8, 17, 10, 0, 0, 0, time.UTC),
		},
	}

	out := formatRecentPlans(stored)

	if !strings.Contains(out, "🗂 *Your Recent Plans*") {
		t.Error("Missing recent plans header")
	}
	if !strings.Contains(out, "`plan-123` (2026-08-24), starts with Overnight Oats") {
		t.Error("Missing decoded plan line with first recipe")
	}
	// A row with undecodable data still lists its ID and date
	if !strings.Contains(out, "`plan-99` (2026-08-17)") {
		t.Error("Missing line for plan with undecodable data")
	}
}

func TestFormatRecentPlansEmpty(t *testing.T) {
	out := formatRecentPlans(nil)
	if !strings.Contains(out, "No plans yet") {
		t.Error("Expected empty-state message")
	}
}
