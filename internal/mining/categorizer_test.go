package mining

import "testing"

func TestCategorize(t *testing.T) {
	categorizer := NewCategorizer(nil)

	cases := []struct {
		ingredient string
		want       string
	}{
		{"Chicken breast", "protein"},
		{"2 large eggs", "protein"},
		{"Baby spinach", "produce"},
		{"Mixed berries", "produce"},
		{"Brown rice", "grains"},
		{"Greek yogurt", "dairy"},
		{"Olive oil", "other"},
		{"", "other"},
	}
	for _, c := range cases {
		if got := categorizer.Categorize(c.ingredient); got != c.want {
			t.Errorf("Categorize(%q) = %q, want %q", c.ingredient, got, c.want)
		}
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	categorizer := NewCategorizer(nil)

	// Matches both protein ("chicken") and produce ("broccoli"); protein is
	// listed first.
	if got := categorizer.Categorize("Chicken and broccoli stir fry"); got != "protein" {
		t.Errorf("Expected protein, got %q", got)
	}
}

func TestCategorizeCustomCategories(t *testing.T) {
	categorizer := NewCategorizer([]Category{
		{Name: "pantry", Keywords: []string{"oil", "vinegar"}},
	})

	if got := categorizer.Categorize("Olive oil"); got != "pantry" {
		t.Errorf("Expected pantry, got %q", got)
	}
	if got := categorizer.Categorize("Chicken"); got != "other" {
		t.Errorf("Expected custom set to replace the defaults, got %q", got)
	}
}
