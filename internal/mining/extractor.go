package mining

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fitplanner/internal/plan"
)

// ExtractionEmptyError reports that the raw text contained no recipe names
// and no meal-type pairs, so no plan could be synthesized.
type ExtractionEmptyError struct{}

func (e *ExtractionEmptyError) Error() string {
	return "text mining found no recipes in the response"
}

var (
	// A capitalized phrase immediately followed by a recipe cue: "- recipe",
	// an "Ingredients"/"Instructions" heading on the same line, or an
	// "Ingredients" heading on the next line. A next-line "Instructions"
	// heading is not a cue, since the line above it is usually the last
	// ingredient. Candidate length is filtered separately.
	recipeCueRe = regexp.MustCompile(`([A-Z][A-Za-z'\-]+(?:[ ][A-Za-z0-9'\-]+){0,5})\s*(?:-\s*(?i:recipe)\b|:?[ \t]*(?i:instructions)\b|:?\s*(?i:ingredients)\b)`)

	// A meal-type keyword followed by a separator and a capitalized phrase.
	// Only capitalized words chain into the name so a following keyword on
	// the same line is not swallowed.
	mealPairRe = regexp.MustCompile(`((?i:morning snack|afternoon snack|evening snack|breakfast|lunch|dinner|snack))\s*[:\-–]\s*([A-Z][A-Za-z0-9'&\-]*(?:[ ][A-Z0-9][A-Za-z0-9'&\-]*){0,5})`)

	ingredientsHeadingRe  = regexp.MustCompile(`(?i)ingredients\b:?`)
	instructionsHeadingRe = regexp.MustCompile(`(?i)(instructions|directions|method|steps)\b:?`)
	blockEndRe            = regexp.MustCompile(`(?i)(nutrition|calories|macros|ingredients)\b:?`)
	listItemSplitRe       = regexp.MustCompile(`\n|•|▪|\s-\s|\s\*\s|\d+[.)]\s`)
)

const (
	minRecipeNameLen = 3
	maxRecipeNameLen = 40
	minListItemLen   = 4
)

// mealSlots is the canonical meal order within a day with its conventional
// clock time.
var mealSlots = []struct {
	Type string
	Time string
}{
	{"breakfast", "8:00 AM"},
	{"morning snack", "10:30 AM"},
	{"lunch", "1:00 PM"},
	{"afternoon snack", "3:30 PM"},
	{"snack", "3:30 PM"},
	{"dinner", "7:00 PM"},
	{"evening snack", "9:00 PM"},
}

// Extractor mines recipe content directly out of unstructured prose when no
// usable JSON exists, and synthesizes a full weekly plan from whatever it
// finds. Text mining cannot recover macros, so every recipe carries the fixed
// nutrition estimate.
type Extractor struct {
	categorizer *Categorizer

	// NutritionEstimate is credited to every mined recipe.
	NutritionEstimate plan.Nutrition
	// Stand-ins substitute for recipes whose detail blocks were not found.
	StandInIngredients  []string
	StandInInstructions []string
}

// NewExtractor creates an extractor; a nil categorizer selects the defaults.
func NewExtractor(categorizer *Categorizer) *Extractor {
	if categorizer == nil {
		categorizer = NewCategorizer(nil)
	}
	return &Extractor{
		categorizer:       categorizer,
		NutritionEstimate: plan.Nutrition{Calories: 400, Protein: 25, Carbs: 40, Fats: 15},
		StandInIngredients: []string{
			"Fresh ingredients", "Seasonings", "Oil",
		},
		StandInInstructions: []string{
			"Prepare all ingredients",
			"Cook according to preference",
			"Season to taste and serve",
		},
	}
}

type mealPair struct {
	MealType string
	Name     string
}

// ExtractWeeklyPlan synthesizes a seven-day plan from raw text. It returns
// ExtractionEmptyError when neither recipe names nor meal-type pairs were
// found.
func (e *Extractor) ExtractWeeklyPlan(text string) (*plan.WeeklyPlan, error) {
	names := e.extractRecipeNames(text)
	pairs := e.extractMealPairs(text)

	if len(names) == 0 && len(pairs) == 0 {
		return nil, &ExtractionEmptyError{}
	}

	// Deduplicate recipe names across both extractions, preserving order.
	all := make([]string, 0, len(names)+len(pairs))
	for _, p := range pairs {
		all = appendUnique(all, p.Name)
	}
	for _, n := range names {
		all = appendUnique(all, n)
	}

	recipes := make(map[string]plan.Recipe, len(all))
	for _, name := range all {
		recipes[strings.ToLower(name)] = e.buildRecipe(text, name)
	}

	byType := e.groupByMealType(all, pairs)

	weekly := &plan.WeeklyPlan{
		ID:           fmt.Sprintf("mined-%d", time.Now().Unix()),
		ShoppingList: e.buildShoppingList(all, recipes),
		MealPrepTips: []string{
			"Batch cook proteins at the start of the week",
			"Chop vegetables ahead and store them in airtight containers",
		},
		BatchCookingRecommendations: []string{
			"Double the dinner recipes and refrigerate half for later in the week",
		},
	}

	for i, dayName := range plan.WeekDays {
		day := plan.DayPlan{Day: dayName}
		for _, slot := range mealSlots {
			assigned := byType[slot.Type]
			if len(assigned) == 0 {
				continue
			}
			recipe := recipes[strings.ToLower(assigned[i%len(assigned)])]
			day.Meals = append(day.Meals, plan.Meal{
				MealType: slot.Type,
				Time:     slot.Time,
				Recipe:   recipe,
			})
			day.DailyNutrition = day.DailyNutrition.Add(recipe.Nutrition)
		}
		weekly.Days = append(weekly.Days, day)
	}

	return weekly, nil
}

// extractRecipeNames finds capitalized phrases followed by recipe cues.
func (e *Extractor) extractRecipeNames(text string) []string {
	var names []string
	for _, m := range recipeCueRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) < minRecipeNameLen || len(name) > maxRecipeNameLen {
			continue
		}
		names = appendUnique(names, name)
	}
	return names
}

// extractMealPairs finds meal-type keyword to recipe-name associations.
func (e *Extractor) extractMealPairs(text string) []mealPair {
	var pairs []mealPair
	for _, m := range mealPairRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[2])
		if len(name) < minRecipeNameLen {
			continue
		}
		pairs = append(pairs, mealPair{
			MealType: strings.ToLower(strings.TrimSpace(m[1])),
			Name:     name,
		})
	}
	return pairs
}

// groupByMealType assigns recipe names to meal types. Explicit pairs win;
// whatever remains is distributed round-robin across the three main meals.
func (e *Extractor) groupByMealType(all []string, pairs []mealPair) map[string][]string {
	byType := make(map[string][]string)
	paired := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		byType[p.MealType] = appendUnique(byType[p.MealType], p.Name)
		paired[strings.ToLower(p.Name)] = true
	}

	mains := []string{"breakfast", "lunch", "dinner"}
	i := 0
	for _, name := range all {
		if paired[strings.ToLower(name)] {
			continue
		}
		byType[mains[i%len(mains)]] = appendUnique(byType[mains[i%len(mains)]], name)
		i++
	}
	return byType
}

// buildRecipe harvests ingredient and instruction blocks for one recipe name,
// falling back to the stand-in lists when no block is present.
func (e *Extractor) buildRecipe(text, name string) plan.Recipe {
	recipe := plan.Recipe{
		Name:      name,
		Nutrition: e.NutritionEstimate,
	}

	ingredients, instructions := e.harvestBlocks(text, name)
	if len(ingredients) == 0 {
		ingredients = append([]string(nil), e.StandInIngredients...)
	}
	if len(instructions) == 0 {
		instructions = append([]string(nil), e.StandInInstructions...)
	}
	recipe.Ingredients = ingredients
	recipe.Instructions = instructions
	return recipe
}

func (e *Extractor) harvestBlocks(text, name string) (ingredients, instructions []string) {
	start := strings.Index(strings.ToLower(text), strings.ToLower(name))
	if start < 0 {
		return nil, nil
	}
	rest := text[start+len(name):]

	// The ingredients block runs from the recipe name (skipping a leading
	// "Ingredients" heading when present) to the next instructions-type
	// heading.
	loc := instructionsHeadingRe.FindStringIndex(rest)
	if loc == nil {
		return splitListItems(clipBlock(skipHeading(rest, ingredientsHeadingRe))), nil
	}
	ingredients = splitListItems(clipBlock(skipHeading(rest[:loc[0]], ingredientsHeadingRe)))

	// The instructions block runs from that heading to the next nutrition or
	// heading marker, or the end of the text.
	after := rest[loc[1]:]
	if end := blockEndRe.FindStringIndex(after); end != nil {
		after = after[:end[0]]
	}
	instructions = splitListItems(clipBlock(after))
	return ingredients, instructions
}

// skipHeading drops everything up to and including the first match of the
// heading pattern when it sits near the start of the block.
func skipHeading(block string, heading *regexp.Regexp) string {
	if loc := heading.FindStringIndex(block); loc != nil && loc[0] < 40 {
		return block[loc[1]:]
	}
	return block
}

// clipBlock bounds a harvest region so one recipe's block does not swallow the
// rest of the response.
func clipBlock(block string) string {
	const maxBlock = 1200
	if len(block) > maxBlock {
		block = block[:maxBlock]
	}
	return block
}

// splitListItems breaks a block on bullet markers, numbered-list markers, or
// newlines and filters out fragments too short to be real items.
func splitListItems(block string) []string {
	var items []string
	for _, part := range listItemSplitRe.Split(block, -1) {
		part = strings.Trim(part, " \t-*•:.,")
		if len(part) < minListItemLen {
			continue
		}
		items = append(items, part)
	}
	return items
}

// buildShoppingList pools every harvested ingredient and routes each through
// the categorizer. Recipes are visited in extraction order so the list is
// stable across runs.
func (e *Extractor) buildShoppingList(names []string, recipes map[string]plan.Recipe) map[string][]string {
	list := plan.EmptyShoppingList()
	seen := make(map[string]bool)
	for _, name := range names {
		r := recipes[strings.ToLower(name)]
		for _, ing := range r.Ingredients {
			key := strings.ToLower(ing)
			if seen[key] {
				continue
			}
			seen[key] = true
			bucket := e.categorizer.Categorize(ing)
			list[bucket] = append(list[bucket], ing)
		}
	}
	return list
}

func appendUnique(items []string, candidate string) []string {
	for _, existing := range items {
		if strings.EqualFold(existing, candidate) {
			return items
		}
	}
	return append(items, candidate)
}
