package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fitplanner/internal/llm"
	"fitplanner/internal/recovery"
	"fitplanner/internal/shared"
	"fitplanner/internal/storage"

	"github.com/google/generative-ai-go/genai"
)

// mockTextGenerator returns each canned response in order.
type mockTextGenerator struct {
	responses []string
	calls     int
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	resp := m.responses[m.calls]
	if m.calls < len(m.responses)-1 {
		m.calls++
	}
	return llm.ContentResponse{Content: resp}, nil
}

const malformedPlanJSON = `Here you go!
{
	"weeklyPlan": [
		{day: "Monday", meals: [{mealType: "breakfast", recipe: {name: "Overnight Oats", ingredients: ["Oats"], instructions: ["Mix"],},},],},
	],
}`

func TestGeneratePlanRecoversMalformedResponse(t *testing.T) {
	ctx := context.Background()
	gen := &mockTextGenerator{responses: []string{malformedPlanJSON}}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, nil)

	weekly, metas, err := planner.GeneratePlan(ctx, "cli", "something healthy")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if got := weekly.FirstRecipeName(); got != "Overnight Oats" {
		t.Errorf("Expected 'Overnight Oats', got '%s'", got)
	}
	if len(metas) != 1 {
		t.Fatalf("Expected 1 meta entry, got %d", len(metas))
	}
	if metas[0].RecoveryStrategy != string(recovery.StrategyParsed) {
		t.Errorf("Expected parsed strategy, got '%s'", metas[0].RecoveryStrategy)
	}
}

func TestGeneratePlanRegeneratesOnPlaceholder(t *testing.T) {
	ctx := context.Background()
	gen := &mockTextGenerator{responses: []string{
		`{"weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "breakfast", "recipe": {"name": "Recipe Name"}}]}]}`,
		`{"weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "breakfast", "recipe": {"name": "Shakshuka"}}]}]}`,
	}}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, nil)

	weekly, metas, err := planner.GeneratePlan(ctx, "cli", "something healthy")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if got := weekly.FirstRecipeName(); got != "Shakshuka" {
		t.Errorf("Expected regenerated plan, got '%s'", got)
	}
	if len(metas) != 2 {
		t.Errorf("Expected 2 meta entries, got %d", len(metas))
	}
}

func TestGeneratePlanGivesUpAfterRetry(t *testing.T) {
	ctx := context.Background()
	gen := &mockTextGenerator{responses: []string{"total garbage", "still garbage"}}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, nil)

	_, metas, err := planner.GeneratePlan(ctx, "cli", "something healthy")
	if err == nil {
		t.Fatal("Expected an error when every attempt fails")
	}
	if len(metas) != 2 {
		t.Errorf("Expected 2 meta entries, got %d", len(metas))
	}
}

// mockRawGenerator wraps responses in the provider envelope and reports
// usage, the way the Gemini client does.
type mockRawGenerator struct {
	mockTextGenerator
	usage shared.TokenUsage
}

func (m *mockRawGenerator) GenerateRaw(ctx context.Context, prompt string) (any, shared.TokenUsage, error) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(m.responses[m.calls])}}},
		},
	}
	if m.calls < len(m.responses)-1 {
		m.calls++
	}
	return resp, m.usage, nil
}

func TestGeneratePlanRecordsUsageFromRawGenerator(t *testing.T) {
	ctx := context.Background()
	gen := &mockRawGenerator{
		mockTextGenerator: mockTextGenerator{responses: []string{
			`{"weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "breakfast", "recipe": {"name": "Shakshuka"}}]}]}`,
		}},
		usage: shared.TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200, Model: "gemini-1.5-flash"},
	}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, nil)

	weekly, metas, err := planner.GeneratePlan(ctx, "cli", "something healthy")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if got := weekly.FirstRecipeName(); got != "Shakshuka" {
		t.Errorf("Expected 'Shakshuka', got '%s'", got)
	}
	if len(metas) != 1 {
		t.Fatalf("Expected 1 meta entry, got %d", len(metas))
	}
	if metas[0].Usage.TotalTokens != 200 || metas[0].Usage.PromptTokens != 120 {
		t.Errorf("Expected usage from the raw generator to be recorded, got %+v", metas[0].Usage)
	}
}

func TestGeneratePlanPersistsToStore(t *testing.T) {
	ctx := context.Background()
	tempDir, _ := os.MkdirTemp("", "planner_test")
	defer os.RemoveAll(tempDir)
	store, err := storage.NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	gen := &mockTextGenerator{responses: []string{
		`{"id": "plan-test", "weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "lunch", "recipe": {"name": "Power Bowl"}}]}]}`,
	}}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, store)

	weekly, _, err := planner.GeneratePlan(ctx, "cli", "something healthy")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if !store.Exists(weekly.ID) {
		t.Errorf("Expected plan '%s' to be stored", weekly.ID)
	}
}

func TestGeneratePlanPrunesStaleVersions(t *testing.T) {
	ctx := context.Background()
	tempDir, _ := os.MkdirTemp("", "planner_test")
	defer os.RemoveAll(tempDir)
	store, err := storage.NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// A leftover version from an earlier generation of the same plan.
	stale := filepath.Join(tempDir, "plan-test_20240101T000000.json")
	if err := os.WriteFile(stale, []byte(`{"id": "plan-test"}`), 0644); err != nil {
		t.Fatalf("Failed to seed stale version: %v", err)
	}

	gen := &mockTextGenerator{responses: []string{
		`{"id": "plan-test", "weeklyPlan": [{"day": "Monday", "meals": [{"mealType": "lunch", "recipe": {"name": "Power Bowl"}}]}]}`,
	}}
	planner := NewPlanner(gen, recovery.NewEngine(recovery.Options{}), nil, store)

	if _, _, err := planner.GeneratePlan(ctx, "cli", "something healthy"); err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Expected the stale version to be pruned")
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read store dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly one stored version, got %d", len(entries))
	}
}
