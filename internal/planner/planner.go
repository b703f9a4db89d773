package planner

import (
	"context"
	"fmt"
	"time"

	"fitplanner/internal/llm"
	"fitplanner/internal/plan"
	"fitplanner/internal/recovery"
	"fitplanner/internal/shared"
	"fitplanner/internal/storage"
)

// maxAttempts bounds plan generation: the initial call plus one
// regeneration with the stricter prompt.
const maxAttempts = 2

// Planner handles the generation of weekly meal plans.
type Planner struct {
	textGen llm.TextGenerator
	engine  *recovery.Engine
	repo    *PlanRepository
	store   *storage.PlanStore
}

// NewPlanner creates a new Planner instance. Repository and store may be nil
// when persistence is not wanted.
func NewPlanner(textGen llm.TextGenerator, engine *recovery.Engine, repo *PlanRepository, store *storage.PlanStore) *Planner {
	return &Planner{
		textGen: textGen,
		engine:  engine,
		repo:    repo,
		store:   store,
	}
}

// GeneratePlan creates a weekly plan for a user request. A response that
// cannot be recovered triggers one regeneration before giving up.
func (p *Planner) GeneratePlan(ctx context.Context, userID, userRequest string) (*plan.WeeklyPlan, []shared.StageMeta, error) {
	var metas []shared.StageMeta

	for attempt := 0; attempt < maxAttempts; attempt++ {
		prompt := BuildPlanPrompt(userRequest)
		if attempt > 0 {
			prompt = BuildRetryPrompt(userRequest)
		}

		response, usage, latency, err := p.generate(ctx, prompt)
		if err != nil {
			return nil, metas, fmt.Errorf("failed to generate meal plan from LLM: %w", err)
		}

		weekly, strategy := p.engine.RecoverMealPlanWithStrategy(response)
		metas = append(metas, shared.StageMeta{
			Stage:            "planner",
			Usage:            usage,
			Latency:          latency,
			RecoveryStrategy: string(strategy),
		})

		if weekly == nil {
			continue
		}

		if err := p.persist(ctx, userID, weekly); err != nil {
			return nil, metas, err
		}
		return weekly, metas, nil
	}

	return nil, metas, fmt.Errorf("model output could not be recovered after %d attempts", maxAttempts)
}

// generate runs one LLM call, preferring the raw response object when the
// generator exposes it.
func (p *Planner) generate(ctx context.Context, prompt string) (any, shared.TokenUsage, time.Duration, error) {
	start := time.Now()

	if raw, ok := p.textGen.(llm.RawGenerator); ok {
		resp, usage, err := raw.GenerateRaw(ctx, prompt)
		return resp, usage, time.Since(start), err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, shared.TokenUsage{}, time.Since(start), err
	}
	return resp.Content, resp.Usage, time.Since(start), nil
}

func (p *Planner) persist(ctx context.Context, userID string, weekly *plan.WeeklyPlan) error {
	if p.repo != nil {
		if err := p.repo.Save(ctx, userID, weekly); err != nil {
			return fmt.Errorf("failed to save plan to repository: %w", err)
		}
	}
	if p.store != nil {
		if _, err := p.store.Save(weekly); err != nil {
			return fmt.Errorf("failed to save plan to storage: %w", err)
		}
		// A regenerated plan reuses its ID; keep only the newest file.
		if err := p.store.RemoveStaleVersions(weekly.ID); err != nil {
			return fmt.Errorf("failed to prune stale plan versions: %w", err)
		}
	}
	return nil
}
