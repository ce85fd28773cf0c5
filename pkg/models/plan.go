package models

import "time"

// DayPlan is an ordered assignment of due items to a single calendar day.
// Within one planning run an item appears in at most one DayPlan.
type DayPlan struct {
	Date      time.Time `json:"date" db:"plan_date"`
	Items     []Item    `json:"items"`
	Shortfall bool      `json:"shortfall" db:"shortfall"` // pool could not satisfy the minimum constraints
}

// ItemIDs returns the assigned item ids in plan order.
func (p DayPlan) ItemIDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Subjects returns the distinct subjects in the plan, in first-seen order.
func (p DayPlan) Subjects() []string {
	seen := make(map[string]bool)
	var subjects []string
	for _, it := range p.Items {
		if !seen[it.Subject] {
			seen[it.Subject] = true
			subjects = append(subjects, it.Subject)
		}
	}
	return subjects
}
