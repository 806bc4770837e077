package models

import (
	"time"

	"github.com/google/uuid"
)

type Mosque struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite links a user to a mosque whose events appear in their feed.
type Favorite struct {
	UserID    string    `json:"user_id"`
	MosqueID  uuid.UUID `json:"mosque_id"`
	CreatedAt time.Time `json:"created_at"`
}
