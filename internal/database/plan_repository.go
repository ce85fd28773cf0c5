package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/studybot/pkg/models"
)

// PlanRepository handles database operations for day plans
type PlanRepository struct{}

// NewPlanRepository creates a new repository instance
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{}
}

// SavePlan stores a day plan and its item assignments. Re-planning the same
// day replaces the previous assignment.
func (r *PlanRepository) SavePlan(ctx context.Context, plan *models.DayPlan) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM plan_items WHERE plan_date = $1", plan.Date); err != nil {
		return fmt.Errorf("failed to clear previous plan items: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM day_plans WHERE plan_date = $1", plan.Date); err != nil {
		return fmt.Errorf("failed to clear previous plan: %v", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO day_plans (plan_date, shortfall) VALUES ($1, $2)",
		plan.Date, plan.Shortfall,
	); err != nil {
		return fmt.Errorf("failed to insert day plan: %v", err)
	}

	for pos, item := range plan.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO plan_items (plan_date, item_id, position) VALUES ($1, $2, $3)",
			plan.Date, item.ID, pos,
		); err != nil {
			return fmt.Errorf("failed to insert plan item %s: %v", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %v", err)
	}
	return nil
}

// PlanForDate loads a stored day plan with its items in assignment order.
// Returns nil without error when no plan exists for the date.
func (r *PlanRepository) PlanForDate(ctx context.Context, date time.Time) (*models.DayPlan, error) {
	var plan models.DayPlan
	err := DB.GetContext(ctx, &plan, "SELECT plan_date, shortfall FROM day_plans WHERE plan_date = $1", date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day plan: %v", err)
	}

	query := `
		SELECT i.* FROM items i
		JOIN plan_items pi ON pi.item_id = i.id
		WHERE pi.plan_date = $1
		ORDER BY pi.position ASC
	`
	if err := DB.SelectContext(ctx, &plan.Items, query, date); err != nil {
		return nil, fmt.Errorf("failed to get plan items: %v", err)
	}
	return &plan, nil
}
