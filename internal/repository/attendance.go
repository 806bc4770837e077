package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/database"
	"github.com/merzah/merzah/internal/models"
)

// AttendanceRepository stores RSVP edges. Rotation never writes here.
type AttendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Attend(ctx context.Context, userID string, eventID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO attendance (user_id, event_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, event_id) DO NOTHING`,
		userID, eventID,
	)
	return translate(err, "event", "attend event")
}

func (r *AttendanceRepository) Unattend(ctx context.Context, userID string, eventID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM attendance WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	return translate(err, "attendance", "unattend event")
}

func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Attendance, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id, event_id, created_at FROM attendance
		 WHERE event_id = $1 ORDER BY user_id ASC`,
		eventID,
	)
	if err != nil {
		return nil, translate(err, "attendance", "list attendance")
	}
	defer rows.Close()

	var edges []*models.Attendance
	for rows.Next() {
		a := &models.Attendance{}
		if err := rows.Scan(&a.UserID, &a.EventID, &a.CreatedAt); err != nil {
			return nil, translate(err, "attendance", "scan attendance")
		}
		edges = append(edges, a)
	}
	return edges, translate(rows.Err(), "attendance", "iterate attendance")
}

func (r *AttendanceRepository) EventIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT event_id FROM attendance WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, translate(err, "attendance", "list attended events")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "attendance", "scan attended event")
		}
		ids = append(ids, id)
	}
	return ids, translate(rows.Err(), "attendance", "iterate attended events")
}

func (r *AttendanceRepository) CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT event_id, COUNT(*) FROM attendance
		 WHERE event_id = ANY($1) GROUP BY event_id`,
		eventIDs,
	)
	if err != nil {
		return nil, translate(err, "attendance", "count attendance")
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, translate(err, "attendance", "scan attendance count")
		}
		counts[id] = n
	}
	return counts, translate(rows.Err(), "attendance", "iterate attendance counts")
}
