package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/models"
	"github.com/merzah/merzah/internal/recurrence"
)

type mosqueStore interface {
	Upsert(ctx context.Context, mosque *models.Mosque) error
	GetByID(ctx context.Context, mosqueID uuid.UUID) (*models.Mosque, error)
}

type eventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	ListByMosques(ctx context.Context, mosqueIDs []uuid.UUID) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event, read models.EventVersion) error
	StopRecurring(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	DeleteSeries(ctx context.Context, eventID uuid.UUID) error
	ListRotationCandidates(ctx context.Context, now time.Time) ([]*models.Event, error)
	AdvanceOccurrence(ctx context.Context, eventID uuid.UUID, from, to time.Time) error
}

type attendanceStore interface {
	Attend(ctx context.Context, userID string, eventID uuid.UUID) error
	Unattend(ctx context.Context, userID string, eventID uuid.UUID) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Attendance, error)
	EventIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error)
	CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type favoriteStore interface {
	Add(ctx context.Context, userID string, mosqueID uuid.UUID) error
	Remove(ctx context.Context, userID string, mosqueID uuid.UUID) error
	MosqueIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error)
}

type stores struct {
	mosques    mosqueStore
	events     eventStore
	attendance attendanceStore
	favorites  favoriteStore
	// forget removes a seeded mosque and everything under it.
	forget func(mosqueID uuid.UUID)
}

// runStoreContract checks the behaviour both store implementations share.
func runStoreContract(t *testing.T, open func(t *testing.T) stores) {
	t.Run("event round trip", func(t *testing.T) { testEventRoundTrip(t, open(t)) })
	t.Run("conditional advance", func(t *testing.T) { testConditionalAdvance(t, open(t)) })
	t.Run("rotation candidates", func(t *testing.T) { testRotationCandidates(t, open(t)) })
	t.Run("update guarded by occurrence", func(t *testing.T) { testGuardedUpdate(t, open(t)) })
	t.Run("update guarded by recurring flag", func(t *testing.T) { testUpdateAfterStop(t, open(t)) })
	t.Run("stop recurring", func(t *testing.T) { testStopRecurring(t, open(t)) })
	t.Run("delete cascades attendance", func(t *testing.T) { testDeleteCascade(t, open(t)) })
	t.Run("favorites", func(t *testing.T) { testFavorites(t, open(t)) })
}

func seedMosque(t *testing.T, s stores) *models.Mosque {
	t.Helper()
	mosque := &models.Mosque{ID: uuid.New(), Name: "Central Mosque", Timezone: "UTC"}
	if err := s.mosques.Upsert(context.Background(), mosque); err != nil {
		t.Fatalf("upsert mosque: %v", err)
	}
	if s.forget != nil {
		t.Cleanup(func() { s.forget(mosque.ID) })
	}
	return mosque
}

func seedEvent(t *testing.T, s stores, mosqueID uuid.UUID, date time.Time, pattern recurrence.Pattern) *models.Event {
	t.Helper()
	event := &models.Event{
		MosqueID:          mosqueID,
		Title:             "Sunday school",
		Description:       "Quran recitation for children",
		Category:          models.CategoryYouth,
		Timezone:          "UTC",
		NextOccurrence:    date,
		IsRecurring:       pattern.IsRecurring(),
		RecurrencePattern: pattern,
		CreatedBy:         "rep-7",
	}
	if pattern.IsRecurring() {
		event.RecurrenceEndDate = recurrence.DefaultDuration.EndDate(date)
	}
	if err := s.events.Create(context.Background(), event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func day(d int, hour int) time.Time {
	return time.Date(2026, 1, d, hour, 0, 0, 0, time.UTC)
}

func testEventRoundTrip(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	speaker := "Ustadha Fatima"
	event := seedEvent(t, s, mosque.ID, day(4, 10), recurrence.Weekly)
	event.Speaker = &speaker
	if err := s.events.Update(ctx, event, event.Version()); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != event.Title || got.Category != models.CategoryYouth || got.RecurrencePattern != recurrence.Weekly {
		t.Fatalf("unexpected event %+v", got)
	}
	if got.Speaker == nil || *got.Speaker != speaker {
		t.Fatalf("expected speaker %q, got %v", speaker, got.Speaker)
	}
	if !got.NextOccurrence.Equal(day(4, 10)) {
		t.Fatalf("expected date %s, got %s", day(4, 10), got.NextOccurrence)
	}
	if got.RecurrenceEndDate == nil || !got.RecurrenceEndDate.Equal(day(4, 10).AddDate(0, 0, 90)) {
		t.Fatalf("unexpected end date %v", got.RecurrenceEndDate)
	}

	if _, err := s.events.GetByID(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	orphan := &models.Event{
		MosqueID: uuid.New(), Title: "Orphan", Description: "No host mosque here",
		Category: models.CategorySocial, Timezone: "UTC", NextOccurrence: day(5, 10),
	}
	if err := s.events.Create(ctx, orphan); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown mosque, got %v", err)
	}
}

func testConditionalAdvance(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	event := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Weekly)

	if err := s.events.AdvanceOccurrence(ctx, event.ID, day(1, 18), day(8, 18)); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// A second writer that read the old date must lose.
	err := s.events.AdvanceOccurrence(ctx, event.ID, day(1, 18), day(8, 18))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := s.events.AdvanceOccurrence(ctx, uuid.New(), day(1, 18), day(8, 18)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, _ := s.events.GetByID(ctx, event.ID)
	if !got.NextOccurrence.Equal(day(8, 18)) {
		t.Fatalf("expected 2026-01-08T18:00, got %s", got.NextOccurrence)
	}
	if got.Title != event.Title || !got.RecurrenceEndDate.Equal(*event.RecurrenceEndDate) {
		t.Fatalf("advance must only move the date, got %+v", got)
	}

	oneTime := seedEvent(t, s, mosque.ID, day(2, 9), recurrence.None)
	if err := s.events.AdvanceOccurrence(ctx, oneTime.ID, day(2, 9), day(3, 9)); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for one-time event, got %v", err)
	}
}

func testRotationCandidates(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	due := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Weekly)
	atNow := seedEvent(t, s, mosque.ID, day(10, 12), recurrence.Daily)
	seedEvent(t, s, mosque.ID, day(11, 18), recurrence.Weekly)
	seedEvent(t, s, mosque.ID, day(2, 18), recurrence.None)

	candidates, err := s.events.ListRotationCandidates(ctx, day(10, 12))
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	var ids []uuid.UUID
	for _, c := range candidates {
		if c.MosqueID == mosque.ID {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) != 2 || ids[0] != due.ID || ids[1] != atNow.ID {
		t.Fatalf("expected [%s %s] oldest first, got %v", due.ID, atNow.ID, ids)
	}
}

func testGuardedUpdate(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	event := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Weekly)
	read := event.Version()

	if err := s.events.AdvanceOccurrence(ctx, event.ID, day(1, 18), day(8, 18)); err != nil {
		t.Fatalf("advance: %v", err)
	}

	event.Title = "Renamed after rotation"
	if err := s.events.Update(ctx, event, read); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := s.events.GetByID(ctx, event.ID)
	if got.Title == "Renamed after rotation" || !got.NextOccurrence.Equal(day(8, 18)) {
		t.Fatalf("stale update applied: %+v", got)
	}
}

func testUpdateAfterStop(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	event := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Weekly)
	read := event.Version()

	if _, err := s.events.StopRecurring(ctx, event.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	event.Title = "Renamed after stop"
	if err := s.events.Update(ctx, event, read); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := s.events.GetByID(ctx, event.ID)
	if got.IsRecurring || got.Title == "Renamed after stop" {
		t.Fatalf("stale update revived the series: %+v", got)
	}
}

func testStopRecurring(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	event := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Monthly)

	stopped, err := s.events.StopRecurring(ctx, event.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.IsRecurring || stopped.RecurrencePattern != recurrence.None || stopped.RecurrenceEndDate != nil {
		t.Fatalf("expected recurrence cleared, got %+v", stopped)
	}
	if !stopped.NextOccurrence.Equal(day(1, 18)) {
		t.Fatalf("expected date kept, got %s", stopped.NextOccurrence)
	}

	candidates, _ := s.events.ListRotationCandidates(ctx, day(31, 0))
	for _, c := range candidates {
		if c.ID == event.ID {
			t.Fatal("stopped event must not be a rotation candidate")
		}
	}

	if _, err := s.events.StopRecurring(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testDeleteCascade(t *testing.T, s stores) {
	ctx := context.Background()
	mosque := seedMosque(t, s)
	event := seedEvent(t, s, mosque.ID, day(1, 18), recurrence.Weekly)
	other := seedEvent(t, s, mosque.ID, day(3, 18), recurrence.Weekly)

	for _, user := range []string{"ali", "sara", "ali"} {
		if err := s.attendance.Attend(ctx, user, event.ID); err != nil {
			t.Fatalf("attend: %v", err)
		}
	}
	if err := s.attendance.Attend(ctx, "sara", other.ID); err != nil {
		t.Fatalf("attend other: %v", err)
	}
	if err := s.attendance.Attend(ctx, "sara", uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown event, got %v", err)
	}

	counts, err := s.attendance.CountByEvents(ctx, []uuid.UUID{event.ID, other.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[event.ID] != 2 || counts[other.ID] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	if err := s.events.DeleteSeries(ctx, event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	edges, err := s.attendance.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges after delete, got %d", len(edges))
	}
	ids, _ := s.attendance.EventIDsByUser(ctx, "sara")
	if len(ids) != 1 || ids[0] != other.ID {
		t.Fatalf("expected unrelated edge kept, got %v", ids)
	}
	if err := s.events.DeleteSeries(ctx, event.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	if err := s.attendance.Unattend(ctx, "sara", other.ID); err != nil {
		t.Fatalf("unattend: %v", err)
	}
	ids, _ = s.attendance.EventIDsByUser(ctx, "sara")
	if len(ids) != 0 {
		t.Fatalf("expected no attendance left, got %v", ids)
	}
}

func testFavorites(t *testing.T, s stores) {
	ctx := context.Background()
	first := seedMosque(t, s)
	second := seedMosque(t, s)
	user := "user-" + uuid.NewString()

	for _, id := range []uuid.UUID{first.ID, second.ID, first.ID} {
		if err := s.favorites.Add(ctx, user, id); err != nil {
			t.Fatalf("add favorite: %v", err)
		}
	}
	if err := s.favorites.Add(ctx, user, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown mosque, got %v", err)
	}

	ids, err := s.favorites.MosqueIDsByUser(ctx, user)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 favorites, got %v", ids)
	}

	if err := s.favorites.Remove(ctx, user, first.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	ids, _ = s.favorites.MosqueIDsByUser(ctx, user)
	if len(ids) != 1 || ids[0] != second.ID {
		t.Fatalf("expected only %s, got %v", second.ID, ids)
	}
}
