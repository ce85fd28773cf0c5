package spaced_repetition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/example/studybot/pkg/models"
)

var reviewTime = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newItem() models.Item {
	return models.Item{
		ID:           "item-1",
		Subject:      "networks",
		Repetitions:  0,
		EaseFactor:   2.5,
		IntervalDays: 0,
	}
}

func mustSchedule(t *testing.T, s *SM2, item models.Item, q models.Quality) models.Item {
	t.Helper()
	out, err := s.Schedule(item, q, reviewTime)
	if err != nil {
		t.Fatalf("Schedule(%s): %v", q, err)
	}
	return out
}

func TestFirstCorrectReviewUsesBootstrapInterval(t *testing.T) {
	s := New(Config{})
	out := mustSchedule(t, s, newItem(), models.QualityCorrect)

	if out.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", out.Repetitions)
	}
	if out.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1 (first bootstrap interval)", out.IntervalDays)
	}
	wantDue := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !out.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", out.DueDate, wantDue)
	}
	if out.LastReviewedAt == nil || !out.LastReviewedAt.Equal(reviewTime) {
		t.Errorf("LastReviewedAt = %v, want %v", out.LastReviewedAt, reviewTime)
	}
}

func TestSecondCorrectReviewUsesSecondBootstrapInterval(t *testing.T) {
	s := New(Config{})
	item := newItem()
	item.Repetitions = 1
	item.IntervalDays = 1

	out := mustSchedule(t, s, item, models.QualityCorrect)
	if out.IntervalDays != 6 {
		t.Errorf("IntervalDays = %d, want 6", out.IntervalDays)
	}
	if out.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", out.Repetitions)
	}
}

func TestCorrectReviewGrowsIntervalByEase(t *testing.T) {
	s := New(Config{})
	item := newItem()
	item.Repetitions = 2
	item.IntervalDays = 6
	item.EaseFactor = 2.0

	out := mustSchedule(t, s, item, models.QualityCorrect)
	if out.IntervalDays != 12 {
		t.Errorf("IntervalDays = %d, want 12 (6 * 2.0)", out.IntervalDays)
	}
	if math.Abs(out.EaseFactor-2.1) > 1e-9 {
		t.Errorf("EaseFactor = %v, want 2.1", out.EaseFactor)
	}
}

func TestIncorrectReviewResetsState(t *testing.T) {
	// Spec scenario: repetitions=3, interval=10, ease=2.3, incorrect.
	s := New(Config{})
	item := newItem()
	item.Repetitions = 3
	item.IntervalDays = 10
	item.EaseFactor = 2.3

	out := mustSchedule(t, s, item, models.QualityIncorrect)
	if out.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", out.Repetitions)
	}
	if out.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want relearn minimum 1", out.IntervalDays)
	}
	if math.Abs(out.EaseFactor-2.1) > 1e-9 {
		t.Errorf("EaseFactor = %v, want 2.1 (2.3 - 0.2)", out.EaseFactor)
	}
	wantDue := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !out.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", out.DueDate, wantDue)
	}
}

func TestIncorrectReviewNeverDropsEaseBelowFloor(t *testing.T) {
	s := New(Config{})
	item := newItem()
	item.EaseFactor = 1.35

	out := mustSchedule(t, s, item, models.QualityIncorrect)
	if out.EaseFactor != 1.3 {
		t.Errorf("EaseFactor = %v, want floor 1.3", out.EaseFactor)
	}

	// A second failure on the already-floored item stays at the floor.
	out = mustSchedule(t, s, out, models.QualityIncorrect)
	if out.EaseFactor != 1.3 {
		t.Errorf("EaseFactor after second failure = %v, want floor 1.3", out.EaseFactor)
	}
}

func TestPartialReviewKeepsStreakAndGrowsSubLinearly(t *testing.T) {
	s := New(Config{})
	item := newItem()
	item.Repetitions = 4
	item.IntervalDays = 10
	item.EaseFactor = 2.5

	out := mustSchedule(t, s, item, models.QualityPartial)
	if out.Repetitions != 4 {
		t.Errorf("Repetitions = %d, want unchanged 4", out.Repetitions)
	}
	if out.IntervalDays != 12 {
		t.Errorf("IntervalDays = %d, want 12 (10 * 1.2)", out.IntervalDays)
	}
	if math.Abs(out.EaseFactor-2.45) > 1e-9 {
		t.Errorf("EaseFactor = %v, want 2.45", out.EaseFactor)
	}
}

func TestPartialReviewOnFreshItemStillYieldsOneDay(t *testing.T) {
	s := New(Config{})
	out := mustSchedule(t, s, newItem(), models.QualityPartial)
	if out.IntervalDays < 1 {
		t.Errorf("IntervalDays = %d, must never be below 1", out.IntervalDays)
	}
}

func TestSkippedReviewOnlyRecordsTimestamp(t *testing.T) {
	s := New(Config{})
	item := newItem()
	item.Repetitions = 2
	item.IntervalDays = 6
	item.DueDate = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	out := mustSchedule(t, s, item, models.QualitySkipped)
	if out.Repetitions != 2 || out.IntervalDays != 6 {
		t.Errorf("state changed on skipped review: reps=%d interval=%d", out.Repetitions, out.IntervalDays)
	}
	if !out.DueDate.Equal(item.DueDate) {
		t.Errorf("DueDate moved on skipped review: %v", out.DueDate)
	}
	if out.LastReviewedAt == nil || !out.LastReviewedAt.Equal(reviewTime) {
		t.Errorf("LastReviewedAt = %v, want %v", out.LastReviewedAt, reviewTime)
	}
}

func TestRepeatedCorrectReviewsAreMonotonic(t *testing.T) {
	s := New(Config{})
	item := newItem()

	prev := 0
	for i := 0; i < 20; i++ {
		item = mustSchedule(t, s, item, models.QualityCorrect)
		if item.IntervalDays < prev {
			t.Fatalf("interval shrank on review %d: %d -> %d", i+1, prev, item.IntervalDays)
		}
		if item.EaseFactor > s.Config().EaseCap {
			t.Fatalf("ease factor %v exceeded cap %v", item.EaseFactor, s.Config().EaseCap)
		}
		prev = item.IntervalDays
	}
	if item.IntervalDays > s.Config().MaxInterval {
		t.Errorf("interval %d exceeded max %d", item.IntervalDays, s.Config().MaxInterval)
	}
}

func TestEaseFactorNeverBelowFloorForAnySequence(t *testing.T) {
	s := New(Config{})
	item := newItem()

	sequence := []models.Quality{
		models.QualityIncorrect, models.QualityPartial, models.QualityIncorrect,
		models.QualityCorrect, models.QualityIncorrect, models.QualityPartial,
		models.QualityIncorrect, models.QualityIncorrect, models.QualitySkipped,
		models.QualityIncorrect,
	}
	for i, q := range sequence {
		item = mustSchedule(t, s, item, q)
		if item.EaseFactor < s.Config().EaseFloor {
			t.Fatalf("step %d (%s): ease factor %v below floor", i, q, item.EaseFactor)
		}
		if item.IntervalDays < 0 {
			t.Fatalf("step %d (%s): negative interval %d", i, q, item.IntervalDays)
		}
	}
}

func TestScheduleRejectsInvalidItems(t *testing.T) {
	s := New(Config{})

	cases := []struct {
		name string
		mut  func(*models.Item)
	}{
		{"missing id", func(i *models.Item) { i.ID = "" }},
		{"negative interval", func(i *models.Item) { i.IntervalDays = -1 }},
		{"zero ease", func(i *models.Item) { i.EaseFactor = 0 }},
		{"negative ease", func(i *models.Item) { i.EaseFactor = -2.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := newItem()
			tc.mut(&item)
			_, err := s.Schedule(item, models.QualityCorrect, reviewTime)
			if !errors.Is(err, ErrInvalidItemState) {
				t.Errorf("err = %v, want ErrInvalidItemState", err)
			}
		})
	}
}

func TestScheduleRejectsUnknownQuality(t *testing.T) {
	s := New(Config{})
	_, err := s.Schedule(newItem(), models.Quality("brilliant"), reviewTime)
	if !errors.Is(err, models.ErrUnknownQuality) {
		t.Errorf("err = %v, want ErrUnknownQuality", err)
	}
}

func TestNewFillsZeroConfigWithDefaults(t *testing.T) {
	s := New(Config{EaseFloor: 1.5})
	cfg := s.Config()
	if cfg.EaseFloor != 1.5 {
		t.Errorf("EaseFloor = %v, want explicit 1.5", cfg.EaseFloor)
	}
	if cfg.EaseCap != 2.8 || cfg.RelearnInterval != 1 || len(cfg.BootstrapIntervals) != 2 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
