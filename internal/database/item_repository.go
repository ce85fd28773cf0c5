package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

// ItemRepository handles database operations for quiz items
type ItemRepository struct{}

// NewItemRepository creates a new repository instance
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// Item returns a single item by id
func (r *ItemRepository) Item(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := DB.GetContext(ctx, &item, "SELECT * FROM items WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %v", id, err)
	}
	return &item, nil
}

// DueItems returns items due on or before the asOf calendar day, most
// overdue first. The bound is the following midnight so due timestamps with
// a time-of-day component still match their own day.
func (r *ItemRepository) DueItems(ctx context.Context, asOf time.Time) ([]models.Item, error) {
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location()).AddDate(0, 0, 1)
	var items []models.Item
	query := `
		SELECT * FROM items
		WHERE due_date < $1
		ORDER BY due_date ASC, id ASC
	`
	if err := DB.SelectContext(ctx, &items, query, end); err != nil {
		return nil, fmt.Errorf("failed to get due items: %v", err)
	}
	return items, nil
}

// AllItems returns every tracked item
func (r *ItemRepository) AllItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := DB.SelectContext(ctx, &items, "SELECT * FROM items ORDER BY subject ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("failed to list items: %v", err)
	}
	return items, nil
}

// SaveItem inserts or updates an item. New items without an id get one
// assigned.
func (r *ItemRepository) SaveItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO items (
			id, subject, question, answer,
			repetitions, ease_factor, interval_days,
			due_date, last_reviewed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			repetitions = EXCLUDED.repetitions,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			due_date = EXCLUDED.due_date,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := DB.ExecContext(ctx, query,
		item.ID,
		item.Subject,
		item.Question,
		item.Answer,
		item.Repetitions,
		item.EaseFactor,
		item.IntervalDays,
		item.DueDate,
		item.LastReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %v", item.ID, err)
	}
	return nil
}
