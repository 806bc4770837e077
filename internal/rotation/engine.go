// Package rotation advances recurring events whose current occurrence has
// passed to their next occurrence, in place.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/recurrence"
)

// DefaultMaxIterations caps the catch-up loop for a single event.
const DefaultMaxIterations = 10000

// Store is the persistence the engine needs.
type Store interface {
	// ListRotationCandidates returns recurring events with NextOccurrence <= now.
	ListRotationCandidates(ctx context.Context, now time.Time) ([]*models.Event, error)
	// AdvanceOccurrence moves the event from one occurrence to another only if
	// it is still recurring and still at from. Otherwise it returns an error
	// matching apperr.ErrConflict (or apperr.ErrNotFound if the event is gone).
	AdvanceOccurrence(ctx context.Context, id uuid.UUID, from, to time.Time) error
}

type Engine struct {
	store         Store
	maxIterations int
}

// NewEngine creates an engine. maxIterations <= 0 selects DefaultMaxIterations.
func NewEngine(store Store, maxIterations int) *Engine {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Engine{store: store, maxIterations: maxIterations}
}

// Run rotates every eligible event at now. Per-event problems are collected
// in the report; the returned error is set only when the candidate query
// fails or ctx is cancelled, in which case the report holds what was done
// before stopping.
func (e *Engine) Run(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{Now: now}

	candidates, err := e.store.ListRotationCandidates(ctx, now)
	if err != nil {
		return report, apperr.Wrap(apperr.CodePersistenceFailure, "list rotation candidates", err)
	}

	for _, event := range candidates {
		// Cancellation is honoured between events, never inside an update.
		if err := ctx.Err(); err != nil {
			log.Printf("Rotation cancelled after %d of %d candidates", len(report.Rotated)+len(report.SeriesEnded)+len(report.Skipped)+len(report.Failed), len(candidates))
			return report, err
		}

		switch Classify(event, now) {
		case SeriesEnded:
			report.SeriesEnded = append(report.SeriesEnded, event.ID)
			log.Printf("Event %s series ended at %s, left at %s", event.ID, event.RecurrenceEndDate.Format(time.RFC3339), event.NextOccurrence.Format(time.RFC3339))
		case Rotate:
			e.rotate(ctx, event, now, report)
		}
	}

	log.Printf("Rotation at %s: %d rotated, %d series ended, %d skipped, %d failed",
		now.Format(time.RFC3339), len(report.Rotated), len(report.SeriesEnded), len(report.Skipped), len(report.Failed))
	return report, nil
}

func (e *Engine) rotate(ctx context.Context, event *models.Event, now time.Time, report *Report) {
	next, steps, err := e.NextAfter(event, now)
	if err != nil {
		report.fail(event.ID, err)
		log.Printf("Failed to rotate event %s: %v", event.ID, err)
		return
	}

	if event.RecurrenceEndDate != nil && next.After(*event.RecurrenceEndDate) {
		report.SeriesEnded = append(report.SeriesEnded, event.ID)
		log.Printf("Event %s series ended: next occurrence %s is past %s", event.ID, next.Format(time.RFC3339), event.RecurrenceEndDate.Format(time.RFC3339))
		return
	}

	err = e.store.AdvanceOccurrence(context.WithoutCancel(ctx), event.ID, event.NextOccurrence, next)
	switch {
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrNotFound):
		report.Skipped = append(report.Skipped, event.ID)
		log.Printf("Skipped event %s: changed by another writer (%v)", event.ID, err)
	case err != nil:
		if apperr.CodeOf(err) == apperr.CodeUnknown {
			err = apperr.Wrap(apperr.CodePersistenceFailure, "advance occurrence", err)
		}
		report.fail(event.ID, err)
		log.Printf("Failed to rotate event %s: %v", event.ID, err)
	default:
		report.Rotated = append(report.Rotated, Rotation{
			EventID:  event.ID,
			MosqueID: event.MosqueID,
			Title:    event.Title,
			From:     event.NextOccurrence,
			To:       next,
			Steps:    steps,
		})
		log.Printf("Rotated event %s from %s to %s", event.ID, event.NextOccurrence.Format(time.RFC3339), next.Format(time.RFC3339))
	}
}

// NextAfter advances the event's occurrence period by period until it is
// strictly after now, returning the new occurrence and the number of periods.
func (e *Engine) NextAfter(event *models.Event, now time.Time) (time.Time, int, error) {
	current := event.NextOccurrence.In(event.Location())

	for step := 1; step <= e.maxIterations; step++ {
		next := recurrence.NextDate(current, event.RecurrencePattern)
		if !next.After(current) {
			return time.Time{}, step, apperr.New(apperr.CodeInvalidPattern,
				fmt.Sprintf("recurrence pattern %q does not advance", event.RecurrencePattern))
		}
		if next.After(now) {
			return next, step, nil
		}
		current = next
	}

	return time.Time{}, e.maxIterations, apperr.New(apperr.CodeRotationOverflow,
		fmt.Sprintf("no occurrence after %s within %d iterations", now.Format(time.RFC3339), e.maxIterations))
}
