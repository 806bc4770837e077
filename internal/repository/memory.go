package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/models"
)

// MemoryStore keeps every record in process memory. It backs local runs
// without a database and the package tests of the event core.
type MemoryStore struct {
	mu         sync.RWMutex
	mosques    map[uuid.UUID]*models.Mosque
	events     map[uuid.UUID]*models.Event
	attendance map[uuid.UUID]map[string]time.Time
	favorites  map[string]map[uuid.UUID]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mosques:    make(map[uuid.UUID]*models.Mosque),
		events:     make(map[uuid.UUID]*models.Event),
		attendance: make(map[uuid.UUID]map[string]time.Time),
		favorites:  make(map[string]map[uuid.UUID]time.Time),
	}
}

func (s *MemoryStore) Mosques() *MemoryMosqueRepository { return &MemoryMosqueRepository{s} }

func (s *MemoryStore) Events() *MemoryEventRepository { return &MemoryEventRepository{s} }

func (s *MemoryStore) Attendance() *MemoryAttendanceRepository { return &MemoryAttendanceRepository{s} }

func (s *MemoryStore) Favorites() *MemoryFavoriteRepository { return &MemoryFavoriteRepository{s} }

// ==================== Mosques ====================

type MemoryMosqueRepository struct{ s *MemoryStore }

func (r *MemoryMosqueRepository) Upsert(ctx context.Context, mosque *models.Mosque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if mosque.CreatedAt.IsZero() {
		mosque.CreatedAt = time.Now()
	}
	m := *mosque
	r.s.mosques[mosque.ID] = &m
	return nil
}

func (r *MemoryMosqueRepository) GetByID(ctx context.Context, mosqueID uuid.UUID) (*models.Mosque, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.mosques[mosqueID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "mosque not found")
	}
	c := *m
	return &c, nil
}

// ==================== Events ====================

type MemoryEventRepository struct{ s *MemoryStore }

func (r *MemoryEventRepository) Create(ctx context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, ok := r.s.mosques[event.MosqueID]; !ok {
		return apperr.New(apperr.CodeNotFound, "mosque not found")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = event.CreatedAt
	r.s.events[event.ID] = event.Clone()
	return nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	event, ok := r.s.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "event not found")
	}
	return event.Clone(), nil
}

func (r *MemoryEventRepository) ListByMosques(ctx context.Context, mosqueIDs []uuid.UUID) ([]*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(mosqueIDs))
	for _, id := range mosqueIDs {
		wanted[id] = true
	}
	var events []*models.Event
	for _, event := range r.s.events {
		if wanted[event.MosqueID] {
			events = append(events, event.Clone())
		}
	}
	sortEvents(events)
	return events, nil
}

func (r *MemoryEventRepository) Update(ctx context.Context, event *models.Event, read models.EventVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.events[event.ID]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "event not found")
	}
	if !current.NextOccurrence.Equal(read.NextOccurrence) || current.IsRecurring != read.IsRecurring {
		return apperr.New(apperr.CodePersistenceConflict, "event changed since it was read")
	}
	updated := event.Clone()
	updated.CreatedAt = current.CreatedAt
	updated.CreatedBy = current.CreatedBy
	updated.UpdatedAt = time.Now()
	r.s.events[event.ID] = updated
	event.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *MemoryEventRepository) StopRecurring(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[eventID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "event not found")
	}
	event.StopRecurring()
	event.UpdatedAt = time.Now()
	return event.Clone(), nil
}

func (r *MemoryEventRepository) DeleteSeries(ctx context.Context, eventID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[eventID]; !ok {
		return apperr.New(apperr.CodeNotFound, "event not found")
	}
	delete(r.s.attendance, eventID)
	delete(r.s.events, eventID)
	return nil
}

func (r *MemoryEventRepository) ListRotationCandidates(ctx context.Context, now time.Time) ([]*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var events []*models.Event
	for _, event := range r.s.events {
		if event.IsRecurring && !event.NextOccurrence.After(now) {
			events = append(events, event.Clone())
		}
	}
	sortEvents(events)
	return events, nil
}

func (r *MemoryEventRepository) AdvanceOccurrence(ctx context.Context, eventID uuid.UUID, from, to time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[eventID]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "event not found")
	}
	if !event.IsRecurring || !event.NextOccurrence.Equal(from) {
		return apperr.New(apperr.CodePersistenceConflict, "event already advanced")
	}
	event.NextOccurrence = to
	event.UpdatedAt = time.Now()
	return nil
}

// ==================== Attendance ====================

type MemoryAttendanceRepository struct{ s *MemoryStore }

func (r *MemoryAttendanceRepository) Attend(ctx context.Context, userID string, eventID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[eventID]; !ok {
		return apperr.New(apperr.CodeNotFound, "event not found")
	}
	edges := r.s.attendance[eventID]
	if edges == nil {
		edges = make(map[string]time.Time)
		r.s.attendance[eventID] = edges
	}
	if _, ok := edges[userID]; !ok {
		edges[userID] = time.Now()
	}
	return nil
}

func (r *MemoryAttendanceRepository) Unattend(ctx context.Context, userID string, eventID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.attendance[eventID], userID)
	return nil
}

func (r *MemoryAttendanceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var edges []*models.Attendance
	for userID, at := range r.s.attendance[eventID] {
		edges = append(edges, &models.Attendance{UserID: userID, EventID: eventID, CreatedAt: at})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].UserID < edges[j].UserID })
	return edges, nil
}

func (r *MemoryAttendanceRepository) EventIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uuid.UUID
	for eventID, edges := range r.s.attendance {
		if _, ok := edges[userID]; ok {
			ids = append(ids, eventID)
		}
	}
	return ids, nil
}

func (r *MemoryAttendanceRepository) CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[uuid.UUID]int, len(eventIDs))
	for _, id := range eventIDs {
		if n := len(r.s.attendance[id]); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

// ==================== Favorites ====================

type MemoryFavoriteRepository struct{ s *MemoryStore }

func (r *MemoryFavoriteRepository) Add(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.mosques[mosqueID]; !ok {
		return apperr.New(apperr.CodeNotFound, "mosque not found")
	}
	favs := r.s.favorites[userID]
	if favs == nil {
		favs = make(map[uuid.UUID]time.Time)
		r.s.favorites[userID] = favs
	}
	if _, ok := favs[mosqueID]; !ok {
		favs[mosqueID] = time.Now()
	}
	return nil
}

func (r *MemoryFavoriteRepository) Remove(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favorites[userID], mosqueID)
	return nil
}

func (r *MemoryFavoriteRepository) MosqueIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uuid.UUID
	for id := range r.s.favorites[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func sortEvents(events []*models.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].NextOccurrence.Equal(events[j].NextOccurrence) {
			return events[i].ID.String() < events[j].ID.String()
		}
		return events[i].NextOccurrence.Before(events[j].NextOccurrence)
	})
}
