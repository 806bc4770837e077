package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
	"github.com/merzah/merzah/internal/models"
)

func (s *Service) Favorite(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	if userID == "" {
		return apperr.New(apperr.CodeUnauthorized, "user identity required")
	}
	if err := s.favorites.Add(ctx, userID, mosqueID); err != nil {
		return fmt.Errorf("favorite mosque: %w", err)
	}
	return nil
}

func (s *Service) Unfavorite(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	if userID == "" {
		return apperr.New(apperr.CodeUnauthorized, "user identity required")
	}
	if err := s.favorites.Remove(ctx, userID, mosqueID); err != nil {
		return fmt.Errorf("unfavorite mosque: %w", err)
	}
	return nil
}

// FavoriteFeed returns the events of every mosque the user favorited, each
// flagged with whether the user attends it.
func (s *Service) FavoriteFeed(ctx context.Context, userID string) ([]models.PersonalEvent, error) {
	if userID == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "user identity required")
	}
	mosqueIDs, err := s.favorites.MosqueIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	events, err := s.events.ListByMosques(ctx, mosqueIDs)
	if err != nil {
		return nil, fmt.Errorf("list favorite events: %w", err)
	}
	return s.personalize(ctx, userID, events)
}

// MosqueEvents returns a mosque's events annotated with the viewer's RSVP.
func (s *Service) MosqueEvents(ctx context.Context, mosqueID uuid.UUID, userID string) ([]models.PersonalEvent, error) {
	events, err := s.events.ListByMosques(ctx, []uuid.UUID{mosqueID})
	if err != nil {
		return nil, fmt.Errorf("list mosque events: %w", err)
	}
	return s.personalize(ctx, userID, events)
}

// MosqueEventSummaries is the mosque admin view: every event with its RSVP count.
func (s *Service) MosqueEventSummaries(ctx context.Context, mosqueID uuid.UUID) ([]models.EventSummary, error) {
	events, err := s.events.ListByMosques(ctx, []uuid.UUID{mosqueID})
	if err != nil {
		return nil, fmt.Errorf("list mosque events: %w", err)
	}
	ids := make([]uuid.UUID, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	counts, err := s.attendance.CountByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	summaries := make([]models.EventSummary, len(events))
	for i, event := range events {
		summaries[i] = models.EventSummary{Event: event, RSVPCount: counts[event.ID]}
	}
	return summaries, nil
}

func (s *Service) personalize(ctx context.Context, userID string, events []*models.Event) ([]models.PersonalEvent, error) {
	attending := make(map[uuid.UUID]bool)
	if userID != "" {
		ids, err := s.attendance.EventIDsByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list attended events: %w", err)
		}
		for _, id := range ids {
			attending[id] = true
		}
	}
	out := make([]models.PersonalEvent, len(events))
	for i, event := range events {
		out[i] = models.PersonalEvent{Event: event, RSVP: attending[event.ID]}
	}
	return out, nil
}
