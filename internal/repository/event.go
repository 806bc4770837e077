package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/database"
	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/recurrence"
)

const eventColumns = `event_id, mosque_id, title, description, category, speaker, timezone,
	 next_occurrence, is_recurring, recurrence_pattern, recurrence_end_date, created_by, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (event_id, mosque_id, title, description, category, speaker, timezone,
		 next_occurrence, is_recurring, recurrence_pattern, recurrence_end_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at, updated_at`,
		event.ID, event.MosqueID, event.Title, event.Description, event.Category, event.Speaker,
		event.Timezone, event.NextOccurrence, event.IsRecurring, event.RecurrencePattern,
		event.RecurrenceEndDate, event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	return translate(err, "event", "create event")
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event WHERE event_id = $1`,
		eventID,
	)
	event, err := scanEvent(row)
	if err != nil {
		return nil, translate(err, "event", "get event")
	}
	return event, nil
}

func (r *EventRepository) ListByMosques(ctx context.Context, mosqueIDs []uuid.UUID) ([]*models.Event, error) {
	if len(mosqueIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event WHERE mosque_id = ANY($1)
		 ORDER BY next_occurrence ASC, event_id ASC`,
		mosqueIDs,
	)
	if err != nil {
		return nil, translate(err, "event", "list events")
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// Update overwrites the template fields and the occurrence of an event, but
// only while the stored occurrence and recurring flag still match read. An
// edit can then neither undo a rotation nor revive a stopped series.
func (r *EventRepository) Update(ctx context.Context, event *models.Event, read models.EventVersion) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET title = $1, description = $2, category = $3, speaker = $4, timezone = $5,
		 next_occurrence = $6, is_recurring = $7, recurrence_pattern = $8, recurrence_end_date = $9,
		 updated_at = NOW()
		 WHERE event_id = $10 AND next_occurrence = $11 AND is_recurring = $12`,
		event.Title, event.Description, event.Category, event.Speaker, event.Timezone,
		event.NextOccurrence, event.IsRecurring, event.RecurrencePattern, event.RecurrenceEndDate,
		event.ID, read.NextOccurrence, read.IsRecurring,
	)
	if err != nil {
		return translate(err, "event", "update event")
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, event.ID, "event changed since it was read")
	}
	return nil
}

func (r *EventRepository) StopRecurring(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	row := r.db.Pool.QueryRow(ctx,
		`UPDATE event SET is_recurring = FALSE, recurrence_pattern = '', recurrence_end_date = NULL,
		 updated_at = NOW()
		 WHERE event_id = $1
		 RETURNING `+eventColumns,
		eventID,
	)
	event, err := scanEvent(row)
	if err != nil {
		return nil, translate(err, "event", "stop recurring")
	}
	return event, nil
}

// DeleteSeries removes the event and its attendance edges in one transaction.
func (r *EventRepository) DeleteSeries(ctx context.Context, eventID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attendance WHERE event_id = $1`, eventID); err != nil {
			return translate(err, "event", "delete attendance")
		}
		tag, err := tx.Exec(ctx, `DELETE FROM event WHERE event_id = $1`, eventID)
		if err != nil {
			return translate(err, "event", "delete event")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.CodeNotFound, "event not found")
		}
		return nil
	})
}

// ListRotationCandidates uses idx_event_rotation on (is_recurring, next_occurrence).
func (r *EventRepository) ListRotationCandidates(ctx context.Context, now time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE is_recurring = TRUE AND next_occurrence <= $1
		 ORDER BY next_occurrence ASC`,
		now,
	)
	if err != nil {
		return nil, translate(err, "event", "list rotation candidates")
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// AdvanceOccurrence is the conditional update used by rotation. Only
// next_occurrence and updated_at change.
func (r *EventRepository) AdvanceOccurrence(ctx context.Context, eventID uuid.UUID, from, to time.Time) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET next_occurrence = $1, updated_at = NOW()
		 WHERE event_id = $2 AND next_occurrence = $3 AND is_recurring = TRUE`,
		to, eventID, from,
	)
	if err != nil {
		return translate(err, "event", "advance occurrence")
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, eventID, "event already advanced")
	}
	return nil
}

func (r *EventRepository) missOrConflict(ctx context.Context, eventID uuid.UUID, msg string) error {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event WHERE event_id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return translate(err, "event", "check event")
	}
	if !exists {
		return apperr.New(apperr.CodeNotFound, "event not found")
	}
	return apperr.New(apperr.CodePersistenceConflict, msg)
}

func (r *EventRepository) scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, translate(err, "event", "scan event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "event", "iterate events")
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	event := &models.Event{}
	var pattern string
	err := row.Scan(&event.ID, &event.MosqueID, &event.Title, &event.Description, &event.Category,
		&event.Speaker, &event.Timezone, &event.NextOccurrence, &event.IsRecurring,
		&pattern, &event.RecurrenceEndDate, &event.CreatedBy,
		&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	event.RecurrencePattern = storedPattern(pattern)
	return event, nil
}

// storedPattern maps a stored pattern onto its canonical name, including
// legacy spellings. Unrecognized values are kept so rotation can report them.
func storedPattern(raw string) recurrence.Pattern {
	if p, err := recurrence.ParsePattern(raw); err == nil {
		return p
	}
	return recurrence.Pattern(raw)
}
