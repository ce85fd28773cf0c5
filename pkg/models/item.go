package models

import "time"

// Item is one learnable unit (a quiz card) tracked by the scheduler.
// DueDate is always derived from the last review plus the current interval;
// it is never set independently of a scheduling computation.
type Item struct {
	ID             string     `json:"id" db:"id"`
	Subject        string     `json:"subject" db:"subject"`
	Question       string     `json:"question" db:"question"`
	Answer         string     `json:"answer" db:"answer"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`          // successful consecutive reviews, resets on failure
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`          // multiplicative driver of interval growth
	IntervalDays   int        `json:"interval_days" db:"interval_days"`      // days between the last two reviews
	DueDate        time.Time  `json:"due_date" db:"due_date"`                // day the item becomes eligible again
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"` // nil if never reviewed
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// DueOn reports whether the item is due on or before the given day. The
// comparison is at day granularity, so a due timestamp carrying a
// time-of-day component still counts on its own calendar day.
func (i Item) DueOn(day time.Time) bool {
	due := time.Date(i.DueDate.Year(), i.DueDate.Month(), i.DueDate.Day(), 0, 0, 0, 0, day.Location())
	return !due.After(day)
}
