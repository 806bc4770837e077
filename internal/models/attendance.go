package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is an RSVP edge. It references the series by event identity,
// so it is unaffected when the event rotates.
type Attendance struct {
	UserID    string    `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
