package mining

import "strings"

// Category is one shopping-list bucket with the keywords that route an
// ingredient into it.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories returns the stock bucket definitions. The keyword lists
// are heuristics grown from observed model output, not a closed vocabulary,
// which is why callers can supply their own set.
func DefaultCategories() []Category {
	return []Category{
		{Name: "protein", Keywords: []string{
			"chicken", "beef", "pork", "turkey", "fish", "salmon", "tuna",
			"shrimp", "egg", "tofu", "tempeh", "lentil", "chickpea", "bean",
			"paneer", "protein powder",
		}},
		{Name: "produce", Keywords: []string{
			"spinach", "kale", "lettuce", "tomato", "onion", "garlic",
			"pepper", "carrot", "broccoli", "cauliflower", "zucchini",
			"cucumber", "mushroom", "avocado", "apple", "banana", "berr",
			"lemon", "lime", "orange", "potato", "sweet potato", "ginger",
			"cilantro", "parsley", "basil",
		}},
		{Name: "grains", Keywords: []string{
			"rice", "bread", "oat", "quinoa", "pasta", "noodle", "tortilla",
			"couscous", "barley", "flour", "cereal", "granola",
		}},
		{Name: "dairy", Keywords: []string{
			"milk", "cheese", "yogurt", "butter", "ghee", "cream", "kefir",
			"mozzarella", "parmesan", "feta",
		}},
	}
}

// Categorizer sorts ingredient strings into shopping-list buckets by
// case-insensitive substring membership. The first matching category wins by
// list order; anything unmatched falls into "other".
type Categorizer struct {
	categories []Category
}

// NewCategorizer creates a categorizer; a nil category list selects the
// defaults.
func NewCategorizer(categories []Category) *Categorizer {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Categorizer{categories: categories}
}

// Categorize returns the bucket name for a single ingredient.
func (c *Categorizer) Categorize(ingredient string) string {
	lower := strings.ToLower(ingredient)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return cat.Name
			}
		}
	}
	return "other"
}
