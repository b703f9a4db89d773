package planner

import (
	"fmt"
	"strings"
)

const planSchema = `{
  "weeklyPlan": [
    {
      "day": "Monday",
      "meals": [
        {
          "mealType": "breakfast",
          "time": "8:00 AM",
          "recipe": {
            "name": "Actual recipe name, never a placeholder",
            "ingredients": ["item 1", "item 2"],
            "instructions": ["step 1", "step 2"],
            "nutrition": {"calories": 400, "protein": 25, "carbs": 40, "fats": 15}
          }
        }
      ],
      "dailyNutrition": {"calories": 1800, "protein": 120, "carbs": 180, "fats": 60}
    }
  ],
  "shoppingList": {"protein": [], "produce": [], "grains": [], "dairy": [], "other": []},
  "mealPrepTips": ["tip 1"],
  "batchCookingRecommendations": ["recommendation 1"]
}`

// BuildPlanPrompt constructs the weekly plan generation prompt.
func BuildPlanPrompt(userRequest string) string {
	return fmt.Sprintf(`You are an expert meal planner. Create a complete 7-day meal plan (Monday to Sunday) for the following request.

User Request: "%s"

Instructions:
1. Plan breakfast, lunch and dinner for every day.
2. Use real recipe names with real ingredients and preparation steps.
3. Aggregate all ingredients into the categorized shopping list.
4. Return the result strictly as a JSON object with this structure:
%s

Do not include any other text or formatting in your response.`, userRequest, planSchema)
}

// BuildRetryPrompt constructs the stricter regeneration prompt used after a
// response could not be recovered.
func BuildRetryPrompt(userRequest string) string {
	var b strings.Builder
	b.WriteString(BuildPlanPrompt(userRequest))
	b.WriteString("\n\nIMPORTANT: your previous response was not valid JSON. ")
	b.WriteString("Respond with ONLY the JSON object. No markdown fences, no commentary, no placeholder names.")
	return b.String()
}
