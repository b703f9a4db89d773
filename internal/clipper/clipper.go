package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fitplanner/internal/ghost"
	"fitplanner/internal/llm"
	"fitplanner/internal/plan"
	"fitplanner/internal/recovery"

	"github.com/PuerkitoBio/goquery"
)

// Clipper fetches recipe pages and turns them into structured recipes. The
// model's extraction output goes through the same recovery pipeline as plan
// generation, so a sloppy response still yields a recipe.
type Clipper struct {
	ghostClient ghost.Client
	textGen     llm.TextGenerator
	engine      *recovery.Engine
	httpClient  *http.Client
}

// NewClipper creates a new Clipper instance. The ghost client may be nil
// when publishing is not configured.
func NewClipper(ghostClient ghost.Client, textGen llm.TextGenerator, engine *recovery.Engine) *Clipper {
	return &Clipper{
		ghostClient: ghostClient,
		textGen:     textGen,
		engine:      engine,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Clip fetches the URL and extracts a structured recipe from it.
func (c *Clipper) Clip(ctx context.Context, url string) (*plan.Recipe, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe Title",
  "ingredients": ["item 1", "item 2", ...],
  "instructions": ["Step 1 description", "Step 2 description", ...],
  "nutrition": {"calories": 0, "protein": 0, "carbs": 0, "fats": 0}
}

Page Content:
%s
`, content)

	llmResponse, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	value, err := c.engine.RecoverJSON(llmResponse.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to recover recipe from AI response: %w", err)
	}

	recipe, err := recipeFromValue(value)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// ClipURL fetches the URL, extracts the recipe, and publishes it to Ghost.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*ghost.Post, error) {
	if c.ghostClient == nil {
		return nil, fmt.Errorf("ghost publishing is not configured")
	}

	recipe, err := c.Clip(ctx, url)
	if err != nil {
		return nil, err
	}

	post, err := c.ghostClient.CreatePost(recipe.Name, c.formatToHTML(*recipe, url), true)
	if err != nil {
		return nil, fmt.Errorf("failed to save to ghost: %w", err)
	}
	return post, nil
}

// recipeFromValue decodes a recovered value into a recipe, tolerating the
// title/steps key variants models substitute.
func recipeFromValue(value any) (*plan.Recipe, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("recovered value is not an object")
	}
	if _, ok := m["name"]; !ok {
		if title, ok := m["title"]; ok {
			m["name"] = title
		}
	}
	if _, ok := m["instructions"]; !ok {
		if steps, ok := m["steps"]; ok {
			m["instructions"] = steps
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode recipe: %w", err)
	}
	var recipe plan.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	if recipe.Name == "" {
		return nil, fmt.Errorf("extracted recipe has no name")
	}
	return &recipe, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

func (c *Clipper) formatToHTML(r plan.Recipe, sourceURL string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", sourceURL, sourceURL))

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.Ingredients {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", ing))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol>")
	for _, step := range r.Instructions {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", step))
	}
	sb.WriteString("</ol>")

	if r.Nutrition.Calories > 0 {
		sb.WriteString("<hr>")
		sb.WriteString(fmt.Sprintf("<p><strong>~%.0f kcal</strong> | protein %.0fg | carbs %.0fg | fats %.0fg</p>",
			r.Nutrition.Calories, r.Nutrition.Protein, r.Nutrition.Carbs, r.Nutrition.Fats))
	}

	return sb.String()
}
