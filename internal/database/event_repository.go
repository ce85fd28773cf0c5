package database

import (
	"context"
	"fmt"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

// EventRepository handles database operations for review events
type EventRepository struct{}

// NewEventRepository creates a new repository instance
func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

// UnprocessedEvents returns pending events ordered chronologically
func (r *EventRepository) UnprocessedEvents(ctx context.Context) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	query := `
		SELECT * FROM review_events
		WHERE processed = FALSE
		ORDER BY occurred_at ASC, id ASC
	`
	if err := DB.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to get unprocessed events: %v", err)
	}
	return events, nil
}

// AppendEvent inserts a new review event. Events without an id get one
// assigned.
func (r *EventRepository) AppendEvent(ctx context.Context, event *models.ReviewEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	query := `
		INSERT INTO review_events (id, item_id, quality, occurred_at, processed)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	_, err := DB.ExecContext(ctx, query, event.ID, event.ItemID, event.Quality, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to append review event: %v", err)
	}
	return nil
}

// MarkProcessed marks an event as consumed
func (r *EventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	result, err := DB.ExecContext(ctx, "UPDATE review_events SET processed = TRUE WHERE id = $1", eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}
