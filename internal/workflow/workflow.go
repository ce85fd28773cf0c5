package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/studybot/internal/planner"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
	"github.com/sirupsen/logrus"
)

// ItemStore supplies and persists quiz items. Implemented by the sqlx store
// and by the Notion-backed catalog.
type ItemStore interface {
	// DueItems returns the items whose due date is on or before asOf.
	DueItems(ctx context.Context, asOf time.Time) ([]models.Item, error)
	// Item returns a single item by id.
	Item(ctx context.Context, id string) (*models.Item, error)
	// SaveItem persists the updated review state of an item.
	SaveItem(ctx context.Context, item *models.Item) error
}

// EventStore supplies review events and records their consumption.
type EventStore interface {
	// UnprocessedEvents returns pending events ordered by occurrence time.
	UnprocessedEvents(ctx context.Context) ([]models.ReviewEvent, error)
	// AppendEvent records a new review event.
	AppendEvent(ctx context.Context, event *models.ReviewEvent) error
	// MarkProcessed marks an event as consumed so it is never replayed.
	MarkProcessed(ctx context.Context, eventID string) error
}

// PlanStore persists generated day plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *models.DayPlan) error
}

// Rejected is one input the workflow could not apply, with the reason.
type Rejected struct {
	Event  models.ReviewEvent
	Reason error
}

// ProcessResult is the partial outcome of one ProcessEvents run. A batch
// never aborts as a whole: every event either lands in Updated (via its
// item) or in Rejected.
type ProcessResult struct {
	Updated  []models.Item
	Rejected []Rejected
}

// Service wires the two scheduling cores to their collaborators. The cores
// stay pure; all I/O and partial-failure accounting happens here.
type Service struct {
	items       ItemStore
	events      EventStore
	plans       PlanStore
	sm2         *spaced_repetition.SM2
	constraints planner.Constraints
	log         *logrus.Logger
}

// NewService creates the review workflow service.
func NewService(items ItemStore, events EventStore, plans PlanStore, sm2 *spaced_repetition.SM2, constraints planner.Constraints, log *logrus.Logger) *Service {
	return &Service{
		items:       items,
		events:      events,
		plans:       plans,
		sm2:         sm2,
		constraints: constraints,
		log:         log,
	}
}

// ProcessEvents consumes all unprocessed review events in chronological
// order. For each event the item is rescheduled, persisted, and the event
// marked processed, in that order. A failure affects only its own event:
// scheduling failures reject the event, persistence failures leave it
// unprocessed for retry and are reported as persistence failures, never as
// scheduling ones.
func (s *Service) ProcessEvents(ctx context.Context) (*ProcessResult, error) {
	events, err := s.events.UnprocessedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})

	result := &ProcessResult{}
	for _, ev := range events {
		item, err := s.items.Item(ctx, ev.ItemID)
		if err != nil {
			s.log.WithField("event", ev.ID).Warnf("item %s not available: %v", ev.ItemID, err)
			result.Rejected = append(result.Rejected, Rejected{Event: ev, Reason: fmt.Errorf("item %s: %w", ev.ItemID, err)})
			continue
		}

		updated, err := s.sm2.Schedule(*item, ev.Quality, ev.OccurredAt)
		if err != nil {
			s.log.WithField("event", ev.ID).Warnf("rejected: %v", err)
			result.Rejected = append(result.Rejected, Rejected{Event: ev, Reason: err})
			continue
		}

		if err := s.items.SaveItem(ctx, &updated); err != nil {
			// Событие остаётся необработанным, попробуем в следующий раз.
			s.log.WithField("event", ev.ID).Errorf("persist failed: %v", err)
			result.Rejected = append(result.Rejected, Rejected{Event: ev, Reason: fmt.Errorf("persist item %s: %w", updated.ID, err)})
			continue
		}
		if err := s.events.MarkProcessed(ctx, ev.ID); err != nil {
			// Элемент уже сохранён; событие может быть доставлено повторно,
			// идемпотентность повторной доставки лежит на хранилище.
			s.log.WithField("event", ev.ID).Errorf("mark processed failed: %v", err)
		}

		result.Updated = append(result.Updated, updated)
		s.log.WithFields(logrus.Fields{
			"item":     updated.ID,
			"quality":  ev.Quality,
			"interval": updated.IntervalDays,
			"due":      updated.DueDate.Format("2006-01-02"),
		}).Info("rescheduled item")
	}

	s.log.Infof("processed %d events, rejected %d", len(result.Updated), len(result.Rejected))
	return result, nil
}

// RecordReview appends a new review event for an item, to be consumed by the
// next ProcessEvents run.
func (s *Service) RecordReview(ctx context.Context, itemID string, quality models.Quality, occurredAt time.Time) (*models.ReviewEvent, error) {
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownQuality, quality)
	}
	if _, err := s.items.Item(ctx, itemID); err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}
	event := &models.ReviewEvent{
		ItemID:     itemID,
		Quality:    quality,
		OccurredAt: occurredAt,
	}
	if err := s.events.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append review event: %w", err)
	}
	return event, nil
}

// GeneratePlan selects due items into one DayPlan per horizon day and
// persists each plan. Plans that fail to persist are still returned; the
// error reports how many could not be saved.
func (s *Service) GeneratePlan(ctx context.Context, start time.Time, horizonDays int) ([]models.DayPlan, error) {
	horizonEnd := spaced_repetition.StartOfDay(start).AddDate(0, 0, horizonDays-1)
	due, err := s.items.DueItems(ctx, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due items: %w", err)
	}
	s.log.Infof("planning %d days over %d due items", horizonDays, len(due))

	plans := planner.Plan(due, start, horizonDays, s.constraints)

	var failed int
	for i := range plans {
		if plans[i].Shortfall {
			s.log.Warnf("plan for %s: due pool below minimum constraints", plans[i].Date.Format("2006-01-02"))
		}
		if err := s.plans.SavePlan(ctx, &plans[i]); err != nil {
			failed++
			s.log.Errorf("failed to persist plan for %s: %v", plans[i].Date.Format("2006-01-02"), err)
		}
	}
	if failed > 0 {
		return plans, fmt.Errorf("%d of %d day plans could not be persisted", failed, len(plans))
	}
	return plans, nil
}
