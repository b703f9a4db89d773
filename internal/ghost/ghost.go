package ghost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"fitplanner/internal/config"
	"fitplanner/internal/plan"

	"github.com/golang-jwt/jwt/v5"
)

// Post represents a single post returned by the Ghost API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	URL       string `json:"url"`
	UpdatedAt string `json:"updated_at"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// Client is an interface for a Ghost Admin API client.
type Client interface {
	CreatePost(title, html string, publish bool) (*Post, error)
	PublishPlan(p *plan.WeeklyPlan, publish bool) (*Post, error)
}

// ghostClient is the concrete implementation of the Ghost API client.
type ghostClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient creates a new Ghost API client.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{},
		config:     cfg,
	}
}

// PublishPlan renders a weekly plan to HTML and creates a post for it.
func (c *ghostClient) PublishPlan(p *plan.WeeklyPlan, publish bool) (*Post, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot publish a nil plan")
	}
	title := fmt.Sprintf("Weekly Meal Plan %s", time.Now().Format("2006-01-02"))
	return c.CreatePost(title, PlanHTML(p), publish)
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *ghostClient) CreatePost(title, html string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}

	newPost := map[string]interface{}{
		"posts": []map[string]interface{}{
			{
				"title":  title,
				"html":   html,
				"status": status,
			},
		},
	}

	body, _ := json.Marshal(newPost)
	url := fmt.Sprintf("%s/ghost/api/v3/admin/posts/?source=html", c.config.GhostURL)

	req, err := http.NewRequest("POST", url, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("admin api error: status %d, body: %v", resp.StatusCode, errResp)
	}

	var response PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	if len(response.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}

	return &response.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *ghostClient) createAdminToken() (string, error) {
	keyParts := strings.Split(c.config.GhostAdminKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	id := keyParts[0]
	secretHex := keyParts[1]

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/v3/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}

// PlanHTML renders a weekly plan as the post body.
func PlanHTML(p *plan.WeeklyPlan) string {
	var b strings.Builder

	for _, day := range p.Days {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<ul>\n", html.EscapeString(day.Day))
		for _, meal := range day.Meals {
			fmt.Fprintf(&b, "<li><strong>%s</strong> (%s): %s</li>\n",
				html.EscapeString(titleCase(meal.MealType)),
				html.EscapeString(meal.Time),
				html.EscapeString(meal.Recipe.Name))
		}
		b.WriteString("</ul>\n")
		if day.DailyNutrition.Calories > 0 {
			fmt.Fprintf(&b, "<p>~%.0f kcal</p>\n", day.DailyNutrition.Calories)
		}
	}

	if len(p.ShoppingList) > 0 {
		b.WriteString("<h2>Shopping List</h2>\n")
		for _, category := range plan.ShoppingCategories {
			items := p.ShoppingList[category]
			if len(items) == 0 {
				continue
			}
			fmt.Fprintf(&b, "<h3>%s</h3>\n<ul>\n", html.EscapeString(titleCase(category)))
			for _, item := range items {
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(item))
			}
			b.WriteString("</ul>\n")
		}
	}

	if len(p.MealPrepTips) > 0 {
		b.WriteString("<h2>Meal Prep Tips</h2>\n<ul>\n")
		for _, tip := range p.MealPrepTips {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(tip))
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
