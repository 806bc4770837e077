package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/apperr"
)

// Attend records that userID attends the series. Attending twice is a no-op.
func (s *Service) Attend(ctx context.Context, userID string, eventID uuid.UUID) error {
	if userID == "" {
		return apperr.New(apperr.CodeUnauthorized, "user identity required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	if err := s.attendance.Attend(ctx, userID, eventID); err != nil {
		return fmt.Errorf("attend event: %w", err)
	}
	return nil
}

func (s *Service) Unattend(ctx context.Context, userID string, eventID uuid.UUID) error {
	if userID == "" {
		return apperr.New(apperr.CodeUnauthorized, "user identity required")
	}
	if err := s.attendance.Unattend(ctx, userID, eventID); err != nil {
		return fmt.Errorf("unattend event: %w", err)
	}
	return nil
}

// Attendees lists the users attending the series.
func (s *Service) Attendees(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	edges, err := s.attendance.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	users := make([]string, len(edges))
	for i, edge := range edges {
		users[i] = edge.UserID
	}
	return users, nil
}
