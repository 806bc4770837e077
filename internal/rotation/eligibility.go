package rotation

import (
	"time"

	"github.com/merzah/merzah/internal/models"
)

// Decision is the outcome of checking one event against the clock.
type Decision int

const (
	// Skip means the event is not recurring or its occurrence is still ahead.
	Skip Decision = iota
	// Rotate means the occurrence has passed and the series is still open.
	Rotate
	// SeriesEnded means the occurrence has passed but the series end date
	// has been reached. The record is left at its last occurrence.
	SeriesEnded
)

func (d Decision) String() string {
	switch d {
	case Rotate:
		return "rotate"
	case SeriesEnded:
		return "series_ended"
	default:
		return "skip"
	}
}

// Classify decides what rotation should do with e at now.
func Classify(e *models.Event, now time.Time) Decision {
	if !e.IsRecurring || e.NextOccurrence.After(now) {
		return Skip
	}
	if e.RecurrenceEndDate != nil && !now.Before(*e.RecurrenceEndDate) {
		return SeriesEnded
	}
	return Rotate
}

// Eligible reports whether e should rotate at now.
func Eligible(e *models.Event, now time.Time) bool {
	return Classify(e, now) == Rotate
}
