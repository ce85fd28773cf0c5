package planner

import (
	"sort"
	"time"

	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
)

// Constraints control how due items are balanced across subjects within one
// study day. Zero-value fields are replaced with the documented defaults:
// at least 2 subjects with 2 items each when the pool supports it, extended
// up to 3 subjects, never more than 6 items per day.
type Constraints struct {
	MinSubjectsPerDay  int // default 2
	MaxSubjectsPerDay  int // default 3
	MinItemsPerSubject int // default 2
	MaxItemsPerSubject int // default 2
	MaxItemsPerDay     int // default 6
}

// DefaultConstraints returns the documented default plan constraints.
func DefaultConstraints() Constraints {
	return Constraints{
		MinSubjectsPerDay:  2,
		MaxSubjectsPerDay:  3,
		MinItemsPerSubject: 2,
		MaxItemsPerSubject: 2,
		MaxItemsPerDay:     6,
	}
}

func (c Constraints) withDefaults() Constraints {
	def := DefaultConstraints()
	// Non-positive values fall back to the defaults, never disable a bound.
	if c.MinSubjectsPerDay <= 0 {
		c.MinSubjectsPerDay = def.MinSubjectsPerDay
	}
	if c.MaxSubjectsPerDay <= 0 {
		c.MaxSubjectsPerDay = def.MaxSubjectsPerDay
	}
	if c.MinItemsPerSubject <= 0 {
		c.MinItemsPerSubject = def.MinItemsPerSubject
	}
	if c.MaxItemsPerSubject <= 0 {
		c.MaxItemsPerSubject = def.MaxItemsPerSubject
	}
	if c.MaxItemsPerDay <= 0 {
		c.MaxItemsPerDay = def.MaxItemsPerDay
	}
	if c.MaxSubjectsPerDay < c.MinSubjectsPerDay {
		c.MaxSubjectsPerDay = c.MinSubjectsPerDay
	}
	if c.MaxItemsPerSubject < c.MinItemsPerSubject {
		c.MaxItemsPerSubject = c.MinItemsPerSubject
	}
	return c
}

// subjectGroup is one subject's backlog, items ordered most-overdue first.
type subjectGroup struct {
	name  string
	items []models.Item
}

// Plan assigns due items to each day of the horizon. An item assigned on an
// earlier day is never assigned again within the same run. The result is
// deterministic: subjects are ranked by backlog size descending, ties broken
// by earliest due date and then by smallest item id, and items within a
// subject by due date and id. Days whose pool cannot satisfy the minimum
// constraints are still emitted, filled with whatever is available and
// flagged as a shortfall.
func Plan(items []models.Item, start time.Time, horizonDays int, c Constraints) []models.DayPlan {
	c = c.withDefaults()
	if horizonDays < 1 {
		horizonDays = 1
	}

	assigned := make(map[string]bool)
	plans := make([]models.DayPlan, 0, horizonDays)
	firstDay := spaced_repetition.StartOfDay(start)

	for d := 0; d < horizonDays; d++ {
		day := firstDay.AddDate(0, 0, d)
		pool := eligible(items, day, assigned)
		plan := selectDay(day, pool, c)
		for _, it := range plan.Items {
			assigned[it.ID] = true
		}
		plans = append(plans, plan)
	}
	return plans
}

// eligible returns items due on or before the day that have not been
// assigned on an earlier day of this run.
func eligible(items []models.Item, day time.Time, assigned map[string]bool) []models.Item {
	var pool []models.Item
	for _, it := range items {
		if assigned[it.ID] {
			continue
		}
		if it.DueOn(day) {
			pool = append(pool, it)
		}
	}
	return pool
}

// selectDay builds a single DayPlan from the eligible pool.
func selectDay(day time.Time, pool []models.Item, c Constraints) models.DayPlan {
	groups := rankSubjects(pool)
	plan := models.DayPlan{Date: day}

	// Cursor per subject: next unconsumed item index.
	next := make([]int, len(groups))
	taken := make([]int, len(groups))
	selected := make([]bool, len(groups))
	capacity := c.MaxItemsPerDay

	take := func(gi, n int) {
		g := &groups[gi]
		for n > 0 && next[gi] < len(g.items) && len(plan.Items) < capacity {
			plan.Items = append(plan.Items, g.items[next[gi]])
			next[gi]++
			taken[gi]++
			n--
		}
		if taken[gi] > 0 {
			selected[gi] = true
		}
	}

	// Phase 1: satisfy the minimum-subject rule, most-loaded subjects first.
	subjects := 0
	for gi := range groups {
		if subjects >= c.MinSubjectsPerDay {
			break
		}
		take(gi, c.MinItemsPerSubject)
		if selected[gi] {
			subjects++
		}
	}

	// Phase 2: spread remaining capacity over new subjects, one item each,
	// before any subject is reused.
	for gi := range groups {
		if subjects >= c.MaxSubjectsPerDay || len(plan.Items) >= capacity {
			break
		}
		if selected[gi] {
			continue
		}
		take(gi, 1)
		if selected[gi] {
			subjects++
		}
	}

	// Phase 3: top selected subjects up to their per-subject maximum.
	for gi := range groups {
		if len(plan.Items) >= capacity {
			break
		}
		if !selected[gi] {
			continue
		}
		take(gi, c.MaxItemsPerSubject-taken[gi])
	}

	// Shortfall: the pool could not provide the minimum number of subjects
	// with the minimum number of items each. Degrade gracefully and pack the
	// day with whatever is still eligible.
	if !minimumMet(groups, taken, c) {
		plan.Shortfall = true
		for gi := range groups {
			if len(plan.Items) >= capacity {
				break
			}
			take(gi, capacity-len(plan.Items))
		}
	}
	return plan
}

func minimumMet(groups []subjectGroup, taken []int, c Constraints) bool {
	full := 0
	for gi := range groups {
		if taken[gi] >= c.MinItemsPerSubject {
			full++
		}
	}
	return full >= c.MinSubjectsPerDay
}

// rankSubjects groups the pool by subject and applies the total orders that
// make planning deterministic regardless of input iteration order.
func rankSubjects(pool []models.Item) []subjectGroup {
	bySubject := make(map[string][]models.Item)
	for _, it := range pool {
		bySubject[it.Subject] = append(bySubject[it.Subject], it)
	}

	groups := make([]subjectGroup, 0, len(bySubject))
	for name, items := range bySubject {
		sort.Slice(items, func(i, j int) bool {
			if !items[i].DueDate.Equal(items[j].DueDate) {
				return items[i].DueDate.Before(items[j].DueDate)
			}
			return items[i].ID < items[j].ID
		})
		groups = append(groups, subjectGroup{name: name, items: items})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if len(a.items) != len(b.items) {
			return len(a.items) > len(b.items) // larger backlog first
		}
		ad, bd := a.items[0].DueDate, b.items[0].DueDate
		if !ad.Equal(bd) {
			return ad.Before(bd)
		}
		return a.items[0].ID < b.items[0].ID
	})
	return groups
}
