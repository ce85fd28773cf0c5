package models

import "time"

// ReviewEvent is one completed review of an item. The event references its
// item by id only; it does not own the item. Each event is consumed exactly
// once by the scheduler, after which the collaborator marks it processed.
type ReviewEvent struct {
	ID         string    `json:"id" db:"id"`
	ItemID     string    `json:"item_id" db:"item_id"`
	Quality    Quality   `json:"quality" db:"quality"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	Processed  bool      `json:"processed" db:"processed"`
}
