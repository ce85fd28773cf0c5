package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/studybot/pkg/models"
)

// ErrInvalidItemState is returned when an item arrives with a negative
// interval, a non-positive ease factor or a missing id. The item is rejected
// on its own; other items in the same batch are unaffected.
var ErrInvalidItemState = errors.New("invalid item state")

// Config holds the tunable bounds of the scheduling algorithm.
// The zero value of any field is replaced with its documented default.
type Config struct {
	// EaseFloor is the lower bound of the ease factor (default 1.3).
	EaseFloor float64
	// EaseCap is the upper bound of the ease factor (default 2.8).
	EaseCap float64
	// EaseBonus is added to the ease factor after a correct review (default 0.1).
	EaseBonus float64
	// EasePenalty is subtracted after an incorrect review (default 0.2).
	EasePenalty float64
	// PartialEasePenalty is subtracted after a partially correct review (default 0.05).
	PartialEasePenalty float64
	// PartialGrowth multiplies the interval after a partially correct review
	// instead of the full ease factor (default 1.2).
	PartialGrowth float64
	// BootstrapIntervals are the fixed intervals in days for the first
	// successful repetitions, before the multiplicative regime starts
	// (default [1, 6]).
	BootstrapIntervals []int
	// RelearnInterval is the interval in days after a failed review (default 1).
	RelearnInterval int
	// MaxInterval caps interval growth in days (default 365).
	MaxInterval int
}

// DefaultConfig returns the documented default bounds.
func DefaultConfig() Config {
	return Config{
		EaseFloor:          1.3,
		EaseCap:            2.8,
		EaseBonus:          0.1,
		EasePenalty:        0.2,
		PartialEasePenalty: 0.05,
		PartialGrowth:      1.2,
		BootstrapIntervals: []int{1, 6},
		RelearnInterval:    1,
		MaxInterval:        365,
	}
}

// SM2 implements the Anki-style spaced repetition algorithm over quiz items.
// Schedule is a pure function of (item state, quality signal); the scheduler
// itself holds no mutable state and is safe for concurrent use.
type SM2 struct {
	cfg Config
}

// New creates a scheduler instance. Zero-value config fields are filled
// with the defaults from DefaultConfig.
func New(cfg Config) *SM2 {
	def := DefaultConfig()
	if cfg.EaseFloor == 0 {
		cfg.EaseFloor = def.EaseFloor
	}
	if cfg.EaseCap == 0 {
		cfg.EaseCap = def.EaseCap
	}
	if cfg.EaseBonus == 0 {
		cfg.EaseBonus = def.EaseBonus
	}
	if cfg.EasePenalty == 0 {
		cfg.EasePenalty = def.EasePenalty
	}
	if cfg.PartialEasePenalty == 0 {
		cfg.PartialEasePenalty = def.PartialEasePenalty
	}
	if cfg.PartialGrowth == 0 {
		cfg.PartialGrowth = def.PartialGrowth
	}
	if len(cfg.BootstrapIntervals) == 0 {
		cfg.BootstrapIntervals = def.BootstrapIntervals
	}
	if cfg.RelearnInterval == 0 {
		cfg.RelearnInterval = def.RelearnInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	return &SM2{cfg: cfg}
}

// Config returns the effective bounds the scheduler runs with.
func (s *SM2) Config() Config {
	return s.cfg
}

// Schedule computes the next review state of an item from one quality signal.
// It returns a new item value and never mutates its input. The due date is
// recomputed as the review day plus the new interval on every branch except
// a skipped review, which only records the review time.
//
// Policy note: a partially correct review keeps the repetition count
// unchanged; the streak survives, but the interval grows by PartialGrowth
// instead of the full ease factor.
func (s *SM2) Schedule(item models.Item, quality models.Quality, reviewedAt time.Time) (models.Item, error) {
	if err := validateItem(item); err != nil {
		return item, err
	}
	if !quality.Valid() {
		return item, fmt.Errorf("%w: %q", models.ErrUnknownQuality, quality)
	}

	at := reviewedAt
	item.LastReviewedAt = &at

	switch quality {
	case models.QualitySkipped:
		// Только фиксируем факт активности, расписание не трогаем.
		return item, nil

	case models.QualityIncorrect:
		// Сброс: переучиваем с минимального интервала.
		item.Repetitions = 0
		item.IntervalDays = s.cfg.RelearnInterval
		item.EaseFactor = s.floorEase(item.EaseFactor - s.cfg.EasePenalty)

	case models.QualityPartial:
		item.IntervalDays = s.capInterval(scaleInterval(item.IntervalDays, s.cfg.PartialGrowth))
		item.EaseFactor = s.floorEase(item.EaseFactor - s.cfg.PartialEasePenalty)

	case models.QualityCorrect:
		item.Repetitions++
		if item.Repetitions <= len(s.cfg.BootstrapIntervals) {
			item.IntervalDays = s.cfg.BootstrapIntervals[item.Repetitions-1]
		} else {
			item.IntervalDays = s.capInterval(scaleInterval(item.IntervalDays, item.EaseFactor))
		}
		item.EaseFactor = math.Min(item.EaseFactor+s.cfg.EaseBonus, s.cfg.EaseCap)
	}

	item.DueDate = StartOfDay(reviewedAt).AddDate(0, 0, item.IntervalDays)
	return item, nil
}

// floorEase clamps the ease factor at the configured floor. One event applies
// at most one penalty, so repeated failures cannot compound below the floor.
func (s *SM2) floorEase(ef float64) float64 {
	if ef < s.cfg.EaseFloor {
		return s.cfg.EaseFloor
	}
	return ef
}

func (s *SM2) capInterval(days int) int {
	if days > s.cfg.MaxInterval {
		return s.cfg.MaxInterval
	}
	return days
}

// scaleInterval grows an interval by a multiplier, never returning less than
// one day. Rounding is half-up so growth is monotonic for factors >= 1.
func scaleInterval(days int, factor float64) int {
	if days < 1 {
		days = 1
	}
	grown := int(math.Round(float64(days) * factor))
	if grown < 1 {
		grown = 1
	}
	return grown
}

func validateItem(item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("%w: missing item id", ErrInvalidItemState)
	}
	if item.IntervalDays < 0 {
		return fmt.Errorf("%w: negative interval %d for item %s", ErrInvalidItemState, item.IntervalDays, item.ID)
	}
	if item.EaseFactor <= 0 {
		return fmt.Errorf("%w: non-positive ease factor %.2f for item %s", ErrInvalidItemState, item.EaseFactor, item.ID)
	}
	return nil
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
