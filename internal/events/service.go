// Package events manages the lifecycle of mosque events: creation with a
// recurrence duration, edits that apply to the current and future
// occurrences, stopping or deleting a series, and RSVP.
package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/clock"
	"github.com/merzah/merzah/internal/models"
)

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	ListByMosques(ctx context.Context, mosqueIDs []uuid.UUID) ([]*models.Event, error)
	// Update fails with a conflict when the stored event no longer matches
	// the version the caller read.
	Update(ctx context.Context, event *models.Event, read models.EventVersion) error
	StopRecurring(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	// DeleteSeries removes the event and cascades its attendance edges.
	DeleteSeries(ctx context.Context, eventID uuid.UUID) error
}

type AttendanceStore interface {
	Attend(ctx context.Context, userID string, eventID uuid.UUID) error
	Unattend(ctx context.Context, userID string, eventID uuid.UUID) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Attendance, error)
	EventIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error)
	CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, userID string, mosqueID uuid.UUID) error
	Remove(ctx context.Context, userID string, mosqueID uuid.UUID) error
	MosqueIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error)
}

type MosqueStore interface {
	GetByID(ctx context.Context, mosqueID uuid.UUID) (*models.Mosque, error)
}

type Service struct {
	events          EventStore
	attendance      AttendanceStore
	favorites       FavoriteStore
	mosques         MosqueStore
	clock           clock.Clock
	defaultTimezone string
}

type Options struct {
	Events          EventStore
	Attendance      AttendanceStore
	Favorites       FavoriteStore
	Mosques         MosqueStore
	Clock           clock.Clock
	DefaultTimezone string // Used when neither the request nor the mosque names one
}

func NewService(opts Options) *Service {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	tz := opts.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}
	return &Service{
		events:          opts.Events,
		attendance:      opts.Attendance,
		favorites:       opts.Favorites,
		mosques:         opts.Mosques,
		clock:           clk,
		defaultTimezone: tz,
	}
}

func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

func (s *Service) Mosque(ctx context.Context, mosqueID uuid.UUID) (*models.Mosque, error) {
	return s.mosques.GetByID(ctx, mosqueID)
}
