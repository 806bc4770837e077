package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/recurrence"
)

// Event is a single aggregate holding both the editable template of a
// series and its live occurrence pointer. Only the current occurrence is
// materialized; rotation advances NextOccurrence in place.
type Event struct {
	ID                uuid.UUID          `json:"id"`
	MosqueID          uuid.UUID          `json:"mosque_id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Category          Category           `json:"category"`
	Speaker           *string            `json:"speaker,omitempty"`
	Timezone          string             `json:"timezone"`        // IANA zone used for calendar arithmetic
	NextOccurrence    time.Time          `json:"date"`            // Current (soon-to-occur or just-occurred) occurrence
	IsRecurring       bool               `json:"is_recurring"`
	RecurrencePattern recurrence.Pattern `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time         `json:"recurrence_end_date,omitempty"` // Fixed at creation; nil = unbounded
	CreatedBy         string             `json:"created_by"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Location returns the event's time zone, falling back to UTC.
func (e *Event) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventVersion is the state an edit read. A write guarded by it fails once
// a rotation or a stop has changed the stored event.
type EventVersion struct {
	NextOccurrence time.Time
	IsRecurring    bool
}

// Version returns the fields that guard an edit.
func (e *Event) Version() EventVersion {
	return EventVersion{NextOccurrence: e.NextOccurrence, IsRecurring: e.IsRecurring}
}

// StopRecurring turns the series into a one-time event at its last date.
func (e *Event) StopRecurring() {
	e.IsRecurring = false
	e.RecurrencePattern = recurrence.None
	e.RecurrenceEndDate = nil
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	c := *e
	if e.Speaker != nil {
		speaker := *e.Speaker
		c.Speaker = &speaker
	}
	if e.RecurrenceEndDate != nil {
		end := *e.RecurrenceEndDate
		c.RecurrenceEndDate = &end
	}
	return &c
}

// EventSummary is the admin view of an event with its RSVP count.
type EventSummary struct {
	Event     *Event `json:"event"`
	RSVPCount int    `json:"rsvp_count"`
}

// PersonalEvent is an event annotated with the viewer's RSVP.
type PersonalEvent struct {
	Event *Event `json:"event"`
	RSVP  bool   `json:"rsvp"`
}
