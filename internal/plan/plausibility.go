package plan

import "strings"

// DefaultExactMarkers are recipe names that are placeholders only when they
// match exactly.
var DefaultExactMarkers = []string{"Recipe Name"}

// DefaultSubstringMarkers flag a recipe name as placeholder scaffolding when
// they appear anywhere inside it.
var DefaultSubstringMarkers = []string{"Placeholder", "Template", "Example"}

// Classifier decides whether a recovered plan carries genuine recipe content
// or only the scaffolding a model echoes back from its prompt. The marker
// lists are heuristics tuned against observed Gemini failure modes, so they
// stay configurable rather than hard-coded.
type Classifier struct {
	ExactMarkers     []string
	SubstringMarkers []string
}

// NewClassifier returns a classifier with the default marker lists.
func NewClassifier() *Classifier {
	return &Classifier{
		ExactMarkers:     DefaultExactMarkers,
		SubstringMarkers: DefaultSubstringMarkers,
	}
}

// IsPlaceholderName reports whether name matches a known non-content marker.
func (c *Classifier) IsPlaceholderName(name string) bool {
	for _, m := range c.ExactMarkers {
		if name == m {
			return true
		}
	}
	for _, m := range c.SubstringMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// IsPlausible reports whether the candidate plan contains genuine recipe
// content. The gate is binary: the first meal of the first day must have a
// non-empty, non-placeholder recipe name. Nutrition ranges and array lengths
// are deliberately not validated here.
func (c *Classifier) IsPlausible(candidate any) bool {
	name, ok := FirstRecipeName(candidate)
	if !ok || name == "" {
		return false
	}
	return !c.IsPlaceholderName(name)
}

// FirstRecipeName locates the first meal of the first day in a candidate plan
// and returns its recipe name. It tolerates every schema shape the model has
// been seen to produce: "weeklyPlan", "days", a flat "meals" list, or day
// names used directly as top-level keys.
func FirstRecipeName(candidate any) (string, bool) {
	switch v := candidate.(type) {
	case *WeeklyPlan:
		if v == nil {
			return "", false
		}
		name := v.FirstRecipeName()
		return name, name != "" || len(v.Days) > 0
	case WeeklyPlan:
		name := v.FirstRecipeName()
		return name, name != "" || len(v.Days) > 0
	case map[string]any:
		return firstRecipeNameFromMap(v)
	}
	return "", false
}

func firstRecipeNameFromMap(m map[string]any) (string, bool) {
	for _, key := range []string{"weeklyPlan", "days"} {
		if days, ok := m[key].([]any); ok && len(days) > 0 {
			if day, ok := days[0].(map[string]any); ok {
				return firstRecipeNameFromDay(day)
			}
		}
	}
	if meals, ok := m["meals"].([]any); ok {
		return firstRecipeNameFromMeals(meals)
	}
	for _, day := range WeekDays {
		v, ok := m[day]
		if !ok {
			v, ok = m[strings.ToLower(day)]
		}
		if !ok {
			continue
		}
		switch dv := v.(type) {
		case map[string]any:
			return firstRecipeNameFromDay(dv)
		case []any:
			return firstRecipeNameFromMeals(dv)
		}
	}
	return "", false
}

func firstRecipeNameFromDay(day map[string]any) (string, bool) {
	meals, ok := day["meals"].([]any)
	if !ok {
		return "", false
	}
	return firstRecipeNameFromMeals(meals)
}

func firstRecipeNameFromMeals(meals []any) (string, bool) {
	if len(meals) == 0 {
		return "", false
	}
	meal, ok := meals[0].(map[string]any)
	if !ok {
		return "", false
	}
	if recipe, ok := meal["recipe"].(map[string]any); ok {
		name, _ := recipe["name"].(string)
		return name, true
	}
	// Some responses inline the recipe name on the meal itself.
	if name, ok := meal["name"].(string); ok {
		return name, true
	}
	return "", false
}
