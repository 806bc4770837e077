package events

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/recurrence"
)

type CreateEventInput struct {
	MosqueID    uuid.UUID `json:"mosque_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Speaker     *string   `json:"speaker,omitempty"`
	Date        time.Time `json:"date"`
	Timezone    string    `json:"timezone,omitempty"`
	Pattern     string    `json:"recurrence_pattern,omitempty"`
	Duration    string    `json:"recurrence_duration,omitempty"`
	CreatedBy   string    `json:"-"`
}

// UpdateEventInput carries the fields to overwrite; nil fields are kept.
type UpdateEventInput struct {
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Speaker           *string    `json:"speaker,omitempty"`
	Date              *time.Time `json:"date,omitempty"`
	Timezone          *string    `json:"timezone,omitempty"`
	Pattern           *string    `json:"recurrence_pattern,omitempty"`
	Duration          *string    `json:"recurrence_duration,omitempty"` // Recomputes the end date from the event's date
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
}

// Create validates the input and stores a new event. With a recurring
// pattern the end date is derived from the duration selection; Forever
// leaves it unset.
func (s *Service) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	var v validation

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	v.length("title", title, 2, 100)
	v.length("description", description, 10, 1000)
	speaker := trimOptional(in.Speaker)
	if speaker != nil {
		v.length("speaker", *speaker, 2, 100)
	}
	category, err := models.ParseCategory(in.Category)
	v.check(err)
	pattern, err := recurrence.ParsePattern(in.Pattern)
	v.check(err)
	duration, err := recurrence.ParseDuration(in.Duration)
	v.check(err)
	if in.MosqueID == uuid.Nil {
		v.add("mosque_id is required")
	}
	if in.Date.IsZero() {
		v.add("date is required")
	}

	tz := in.Timezone
	if tz == "" {
		tz = s.mosqueTimezone(ctx, in.MosqueID)
	}
	v.timezone(tz)

	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	event := &models.Event{
		ID:             uuid.New(),
		MosqueID:       in.MosqueID,
		Title:          title,
		Description:    description,
		Category:       category,
		Speaker:        speaker,
		Timezone:       tz,
		NextOccurrence: in.Date.Truncate(time.Second),
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if pattern.IsRecurring() {
		event.IsRecurring = true
		event.RecurrencePattern = pattern
		event.RecurrenceEndDate = duration.EndDate(event.NextOccurrence)
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	log.Printf("Created event %s for mosque %s (%s)", event.ID, event.MosqueID, event.RecurrencePattern.HumanReadable())
	return event, nil
}

// Edit overwrites the event's template fields. Edits always apply to this
// and future occurrences; a pattern change takes effect at the next
// rotation. Setting the pattern to none turns the series into a one-time
// event.
func (s *Service) Edit(ctx context.Context, eventID uuid.UUID, in UpdateEventInput) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	read := event.Version()

	var v validation
	if in.Title != nil {
		event.Title = strings.TrimSpace(*in.Title)
		v.length("title", event.Title, 2, 100)
	}
	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
		v.length("description", event.Description, 10, 1000)
	}
	if in.Category != nil {
		category, err := models.ParseCategory(*in.Category)
		v.check(err)
		event.Category = category
	}
	if in.Speaker != nil {
		event.Speaker = trimOptional(in.Speaker)
		if event.Speaker != nil {
			v.length("speaker", *event.Speaker, 2, 100)
		}
	}
	if in.Timezone != nil {
		event.Timezone = *in.Timezone
		v.timezone(event.Timezone)
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			v.add("date must not be empty")
		}
		event.NextOccurrence = in.Date.Truncate(time.Second)
	}

	wasRecurring := event.IsRecurring
	if in.Pattern != nil {
		pattern, err := recurrence.ParsePattern(*in.Pattern)
		v.check(err)
		event.RecurrencePattern = pattern
		event.IsRecurring = pattern.IsRecurring()
	}

	switch {
	case !event.IsRecurring:
		if in.Duration != nil || in.RecurrenceEndDate != nil {
			v.add("recurrence end requires a recurring pattern")
		}
		event.StopRecurring()
	case in.Duration != nil:
		duration, err := recurrence.ParseDuration(*in.Duration)
		v.check(err)
		event.RecurrenceEndDate = duration.EndDate(event.NextOccurrence)
	case in.RecurrenceEndDate != nil:
		end := *in.RecurrenceEndDate
		event.RecurrenceEndDate = &end
	case !wasRecurring:
		event.RecurrenceEndDate = recurrence.DefaultDuration.EndDate(event.NextOccurrence)
	}

	if event.RecurrenceEndDate != nil && event.RecurrenceEndDate.Before(event.NextOccurrence) {
		v.add("recurrence_end_date must not be before date")
	}

	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, event, read); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	log.Printf("Updated event %s (%s)", event.ID, event.RecurrencePattern.HumanReadable())
	return event, nil
}

// StopRecurring keeps the record at its last date as a one-time event.
func (s *Service) StopRecurring(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.StopRecurring(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("stop recurring: %w", err)
	}
	log.Printf("Stopped recurrence of event %s at %s", event.ID, event.NextOccurrence.Format(time.RFC3339))
	return event, nil
}

// DeleteSeries removes the event and every RSVP attached to it.
func (s *Service) DeleteSeries(ctx context.Context, eventID uuid.UUID) error {
	if err := s.events.DeleteSeries(ctx, eventID); err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	log.Printf("Deleted event series %s", eventID)
	return nil
}

func (s *Service) mosqueTimezone(ctx context.Context, mosqueID uuid.UUID) string {
	if s.mosques != nil && mosqueID != uuid.Nil {
		if mosque, err := s.mosques.GetByID(ctx, mosqueID); err == nil && mosque.Timezone != "" {
			return mosque.Timezone
		}
	}
	return s.defaultTimezone
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// validation collects every problem with an input before rejecting it.
type validation struct {
	problems []string
}

func (v *validation) add(problem string) {
	v.problems = append(v.problems, problem)
}

func (v *validation) check(err error) {
	if err != nil {
		v.add(err.Error())
	}
}

func (v *validation) length(field, value string, min, max int) {
	if n := utf8.RuneCountInString(value); n < min || n > max {
		v.add(fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
	}
}

func (v *validation) timezone(name string) {
	if _, err := time.LoadLocation(name); err != nil {
		v.add(fmt.Sprintf("unknown timezone %q", name))
	}
}

func (v *validation) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return apperr.New(apperr.CodeValidationFailed, strings.Join(v.problems, "; "))
}
