package models

import (
	"fmt"
	"strings"
)

// Quality represents the outcome of a single review.
type Quality string

const (
	// QualityIncorrect means the answer was wrong and the item must be relearned
	QualityIncorrect Quality = "incorrect"
	// QualityPartial means the answer was close but not fully correct
	QualityPartial Quality = "partial"
	// QualityCorrect means the answer was right
	QualityCorrect Quality = "correct"
	// QualitySkipped means the review was logged without judging correctness
	QualitySkipped Quality = "skipped"
)

// ErrUnknownQuality is returned when a review event carries a quality value
// outside the defined set. Such events are left unprocessed for inspection.
var ErrUnknownQuality = fmt.Errorf("unknown quality signal")

// ParseQuality maps a raw quality string to a Quality value. Besides the
// canonical names it accepts the legacy review-effect labels used by the
// Notion review log (bad / attention / good) and "unrated" as an alias
// for skipped.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incorrect", "bad", "wrong":
		return QualityIncorrect, nil
	case "partial", "partially_correct", "attention":
		return QualityPartial, nil
	case "correct", "good":
		return QualityCorrect, nil
	case "skipped", "unrated":
		return QualitySkipped, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownQuality, s)
	}
}

// Valid reports whether q is one of the defined quality values.
func (q Quality) Valid() bool {
	switch q {
	case QualityIncorrect, QualityPartial, QualityCorrect, QualitySkipped:
		return true
	}
	return false
}
