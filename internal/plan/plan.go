package plan

import (
	"encoding/json"
	"strings"
)

// WeekDays are the day names of a synthesized plan, in order.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ShoppingCategories are the fixed shopping list buckets plus the catch-all.
var ShoppingCategories = []string{"protein", "produce", "grains", "dairy", "other"}

// Nutrition holds the macro estimate for a recipe or an aggregated day.
// Values are best-effort data from the model; caloric consistency is not enforced.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Add returns the element-wise sum of two nutrition estimates.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fats:     n.Fats + o.Fats,
	}
}

// UnmarshalJSON accepts numbers or numeric strings for each macro field,
// since models routinely emit "350" or "350 kcal" where a number belongs.
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Calories = looseNumber(raw["calories"])
	n.Protein = looseNumber(raw["protein"])
	n.Carbs = looseNumber(raw["carbs"])
	n.Fats = looseNumber(raw["fats"])
	return nil
}

func looseNumber(data json.RawMessage) float64 {
	if len(data) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0
	}
	// Keep the leading numeric run of strings like "350 kcal".
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0
	}
	if err := json.Unmarshal([]byte(s[:end]), &f); err != nil {
		return 0
	}
	return f
}

// StringList unmarshals either a JSON array of strings or a single string,
// splitting the latter on newlines. Models emit instructions both ways.
type StringList []string

// UnmarshalJSON implements the tolerant decoding described above.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	*l = out
	return nil
}

// Recipe is a single dish with its preparation details.
type Recipe struct {
	Name         string     `json:"name"`
	Ingredients  StringList `json:"ingredients"`
	Instructions StringList `json:"instructions"`
	Nutrition    Nutrition  `json:"nutrition"`
}

// Meal assigns a recipe to a slot in a day.
type Meal struct {
	MealType string `json:"mealType"`
	Time     string `json:"time"`
	Recipe   Recipe `json:"recipe"`
}

// DayPlan is the ordered list of meals for one day.
type DayPlan struct {
	Day            string    `json:"day"`
	Meals          []Meal    `json:"meals"`
	DailyNutrition Nutrition `json:"dailyNutrition"`
}

// WeeklyPlan is the full recovered plan handed to callers.
type WeeklyPlan struct {
	ID                          string              `json:"id"`
	Days                        []DayPlan           `json:"weeklyPlan"`
	ShoppingList                map[string][]string `json:"shoppingList"`
	MealPrepTips                []string            `json:"mealPrepTips"`
	BatchCookingRecommendations []string            `json:"batchCookingRecommendations"`
}

// FirstRecipeName returns the name of the first meal of the first day.
func (p *WeeklyPlan) FirstRecipeName() string {
	if p == nil || len(p.Days) == 0 || len(p.Days[0].Meals) == 0 {
		return ""
	}
	return p.Days[0].Meals[0].Recipe.Name
}

// EmptyShoppingList returns a shopping list with every category present.
func EmptyShoppingList() map[string][]string {
	list := make(map[string][]string, len(ShoppingCategories))
	for _, c := range ShoppingCategories {
		list[c] = []string{}
	}
	return list
}
