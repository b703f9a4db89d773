package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fitplanner/internal/plan"
)

// StoredPlan represents a stored meal plan row.
type StoredPlan struct {
	ID        int64
	PlanID    string
	UserID    string
	PlanData  []byte // Raw JSON of the weekly plan
	CreatedAt time.Time
}

// Plan decodes the stored JSON back into a weekly plan.
func (s StoredPlan) Plan() (*plan.WeeklyPlan, error) {
	var p plan.WeeklyPlan
	if err := json.Unmarshal(s.PlanData, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored plan %d: %w", s.ID, err)
	}
	return &p, nil
}

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new meal plan into the database.
func (r *PlanRepository) Save(ctx context.Context, userID string, p *plan.WeeklyPlan) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (plan_id, user_id, plan_data, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, userID, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, user_id, plan_data, created_at
		 FROM meal_plans
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		var sp StoredPlan
		if err := rows.Scan(&sp.ID, &sp.PlanID, &sp.UserID, &sp.PlanData, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan row: %w", err)
		}
		plans = append(plans, sp)
	}
	return plans, rows.Err()
}
