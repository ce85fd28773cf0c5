package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/example/studybot/internal/planner"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
	"github.com/sirupsen/logrus"
)

var now = time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	items     map[string]models.Item
	events    []models.ReviewEvent
	plans     []models.DayPlan
	processed map[string]bool

	saveItemErr error
	savePlanErr error
	markErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     make(map[string]models.Item),
		processed: make(map[string]bool),
	}
}

func (f *fakeStore) DueItems(ctx context.Context, asOf time.Time) ([]models.Item, error) {
	var due []models.Item
	for _, it := range f.items {
		if it.DueOn(asOf) {
			due = append(due, it)
		}
	}
	return due, nil
}

func (f *fakeStore) Item(ctx context.Context, id string) (*models.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return &it, nil
}

func (f *fakeStore) SaveItem(ctx context.Context, item *models.Item) error {
	if f.saveItemErr != nil {
		return f.saveItemErr
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) UnprocessedEvents(ctx context.Context) ([]models.ReviewEvent, error) {
	var pending []models.ReviewEvent
	for _, ev := range f.events {
		if !f.processed[ev.ID] {
			pending = append(pending, ev)
		}
	}
	return pending, nil
}

func (f *fakeStore) AppendEvent(ctx context.Context, event *models.ReviewEvent) error {
	if event.ID == "" {
		event.ID = fmt.Sprintf("ev-%d", len(f.events)+1)
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, eventID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.processed[eventID] = true
	return nil
}

func (f *fakeStore) SavePlan(ctx context.Context, plan *models.DayPlan) error {
	if f.savePlanErr != nil {
		return f.savePlanErr
	}
	f.plans = append(f.plans, *plan)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newService(store *fakeStore) *Service {
	return NewService(store, store, store,
		spaced_repetition.New(spaced_repetition.Config{}),
		planner.Constraints{}, quietLogger())
}

func addItem(store *fakeStore, id, subject string, dueOffset int) {
	store.items[id] = models.Item{
		ID:           id,
		Subject:      subject,
		EaseFactor:   2.5,
		IntervalDays: 1,
		DueDate:      now.AddDate(0, 0, dueOffset),
	}
}

func addEvent(store *fakeStore, id, itemID string, q models.Quality, offsetMin int) {
	store.events = append(store.events, models.ReviewEvent{
		ID:         id,
		ItemID:     itemID,
		Quality:    q,
		OccurredAt: now.Add(time.Duration(offsetMin) * time.Minute),
	})
}

func TestProcessEventsUpdatesItemsAndMarksProcessed(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)
	addEvent(store, "ev1", "q1", models.QualityCorrect, 0)

	res, err := newService(store).ProcessEvents(context.Background())
	if err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(res.Updated) != 1 || len(res.Rejected) != 0 {
		t.Fatalf("updated=%d rejected=%d, want 1/0", len(res.Updated), len(res.Rejected))
	}
	if got := store.items["q1"].Repetitions; got != 1 {
		t.Errorf("item repetitions = %d, want 1", got)
	}
	if !store.processed["ev1"] {
		t.Error("event not marked processed")
	}
}

func TestProcessEventsChronologicalOrder(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)
	// Inserted out of order: the later correct must be applied after the
	// earlier incorrect, leaving the item on a fresh streak of 1.
	addEvent(store, "ev-late", "q1", models.QualityCorrect, 30)
	addEvent(store, "ev-early", "q1", models.QualityIncorrect, 5)

	res, err := newService(store).ProcessEvents(context.Background())
	if err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("updated=%d, want 2", len(res.Updated))
	}
	if got := store.items["q1"].Repetitions; got != 1 {
		t.Errorf("repetitions = %d, want 1 (reset then one correct)", got)
	}
}

func TestProcessEventsRejectsPerEventOnly(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)
	addEvent(store, "ev-bad-quality", "q1", models.Quality("stellar"), 0)
	addEvent(store, "ev-missing-item", "ghost", models.QualityCorrect, 1)
	addEvent(store, "ev-ok", "q1", models.QualityCorrect, 2)

	res, err := newService(store).ProcessEvents(context.Background())
	if err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(res.Updated) != 1 {
		t.Errorf("updated=%d, want 1", len(res.Updated))
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("rejected=%d, want 2", len(res.Rejected))
	}
	for _, rej := range res.Rejected {
		if store.processed[rej.Event.ID] {
			t.Errorf("rejected event %s was marked processed", rej.Event.ID)
		}
	}
	var qualityRejection bool
	for _, rej := range res.Rejected {
		if errors.Is(rej.Reason, models.ErrUnknownQuality) {
			qualityRejection = true
		}
	}
	if !qualityRejection {
		t.Error("unknown quality signal not reported as ErrUnknownQuality")
	}
}

func TestProcessEventsPersistFailureLeavesEventUnprocessed(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)
	addEvent(store, "ev1", "q1", models.QualityCorrect, 0)
	store.saveItemErr = errors.New("disk full")

	res, err := newService(store).ProcessEvents(context.Background())
	if err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("rejected=%d, want 1", len(res.Rejected))
	}
	if errors.Is(res.Rejected[0].Reason, spaced_repetition.ErrInvalidItemState) ||
		errors.Is(res.Rejected[0].Reason, models.ErrUnknownQuality) {
		t.Errorf("persist failure reported as scheduling failure: %v", res.Rejected[0].Reason)
	}
	if store.processed["ev1"] {
		t.Error("event marked processed despite persist failure")
	}
	if got := store.items["q1"].Repetitions; got != 0 {
		t.Errorf("item mutated despite persist failure: repetitions=%d", got)
	}
}

func TestRecordReviewAppendsEvent(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)

	ev, err := newService(store).RecordReview(context.Background(), "q1", models.QualityPartial, now)
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if ev.ID == "" {
		t.Error("event id not assigned")
	}
	if len(store.events) != 1 {
		t.Fatalf("events stored = %d, want 1", len(store.events))
	}
}

func TestRecordReviewRejectsUnknownQualityAndMissingItem(t *testing.T) {
	store := newFakeStore()
	addItem(store, "q1", "os", -1)
	svc := newService(store)

	if _, err := svc.RecordReview(context.Background(), "q1", models.Quality("great"), now); !errors.Is(err, models.ErrUnknownQuality) {
		t.Errorf("err = %v, want ErrUnknownQuality", err)
	}
	if _, err := svc.RecordReview(context.Background(), "ghost", models.QualityCorrect, now); err == nil {
		t.Error("expected error for missing item")
	}
	if len(store.events) != 0 {
		t.Errorf("events stored = %d, want 0", len(store.events))
	}
}

func TestGeneratePlanPersistsEveryDay(t *testing.T) {
	store := newFakeStore()
	for i := 1; i <= 4; i++ {
		addItem(store, fmt.Sprintf("os-%d", i), "os", -1)
		addItem(store, fmt.Sprintf("net-%d", i), "networks", -1)
	}

	plans, err := newService(store).GeneratePlan(context.Background(), now, 2)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if len(store.plans) != 2 {
		t.Errorf("persisted plans = %d, want 2", len(store.plans))
	}

	seen := make(map[string]bool)
	for _, p := range plans {
		for _, id := range p.ItemIDs() {
			if seen[id] {
				t.Errorf("item %s assigned twice across the horizon", id)
			}
			seen[id] = true
		}
	}
}

func TestGeneratePlanReportsPersistShortfall(t *testing.T) {
	store := newFakeStore()
	addItem(store, "os-1", "os", -1)
	store.savePlanErr = errors.New("remote store down")

	plans, err := newService(store).GeneratePlan(context.Background(), now, 1)
	if err == nil {
		t.Error("expected persist error to be reported")
	}
	if len(plans) != 1 {
		t.Fatalf("plans = %d, want the computed plan even when persist fails", len(plans))
	}
	if !plans[0].Shortfall {
		t.Error("single-subject pool should be flagged as shortfall")
	}
}
