package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FromRecovered converts a loosely-typed recovered value into a WeeklyPlan.
// The value is normalized to the canonical "weeklyPlan" shape first and then
// decoded through the tolerant JSON types above, so a plan that parsed under
// any of the known schema variants still comes out typed.
func FromRecovered(value any) (*WeeklyPlan, error) {
	switch v := value.(type) {
	case *WeeklyPlan:
		return v, nil
	case WeeklyPlan:
		return &v, nil
	case map[string]any:
		normalized, err := normalizeShape(v)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode recovered plan: %w", err)
		}
		var p WeeklyPlan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode recovered plan: %w", err)
		}
		if p.ShoppingList == nil {
			p.ShoppingList = EmptyShoppingList()
		}
		return &p, nil
	}
	return nil, fmt.Errorf("unsupported plan value of type %T", value)
}

// normalizeShape rewrites the alternate schema shapes into the canonical one.
func normalizeShape(m map[string]any) (map[string]any, error) {
	if _, ok := m["weeklyPlan"]; ok {
		return m, nil
	}
	if days, ok := m["days"]; ok {
		out := cloneWithout(m, "days")
		out["weeklyPlan"] = days
		return out, nil
	}
	if meals, ok := m["meals"]; ok {
		// A flat meal list carries no day structure; treat it as a single
		// leading day so at least the recovered content survives.
		out := cloneWithout(m, "meals")
		out["weeklyPlan"] = []any{map[string]any{"day": WeekDays[0], "meals": meals}}
		return out, nil
	}
	if days := collectDayKeyed(m); len(days) > 0 {
		out := map[string]any{"weeklyPlan": days}
		for _, key := range []string{"id", "shoppingList", "mealPrepTips", "batchCookingRecommendations"} {
			if v, ok := m[key]; ok {
				out[key] = v
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("no recognizable plan structure in recovered value")
}

func collectDayKeyed(m map[string]any) []any {
	var days []any
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
			entry := make(map[string]any, len(dv)+1)
			for k, val := range dv {
				entry[k] = val
			}
			entry["day"] = day
			days = append(days, entry)
		case []any:
			days = append(days, map[string]any{"day": day, "meals": dv})
		}
	}
	return days
}

func cloneWithout(m map[string]any, drop string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != drop {
			out[k] = v
		}
	}
	return out
}
