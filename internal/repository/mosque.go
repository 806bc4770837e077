package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/database"
	"github.com/merzah/merzah/internal/models"
)

type MosqueRepository struct {
	db *database.DB
}

func NewMosqueRepository(db *database.DB) *MosqueRepository {
	return &MosqueRepository{db: db}
}

func (r *MosqueRepository) Upsert(ctx context.Context, mosque *models.Mosque) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO mosque (mosque_id, name, timezone) VALUES ($1, $2, $3)
		 ON CONFLICT (mosque_id) DO UPDATE SET name = EXCLUDED.name, timezone = EXCLUDED.timezone
		 RETURNING created_at`,
		mosque.ID, mosque.Name, mosque.Timezone,
	).Scan(&mosque.CreatedAt)
	return translate(err, "mosque", "upsert mosque")
}

func (r *MosqueRepository) GetByID(ctx context.Context, mosqueID uuid.UUID) (*models.Mosque, error) {
	mosque := &models.Mosque{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT mosque_id, name, timezone, created_at FROM mosque WHERE mosque_id = $1`,
		mosqueID,
	).Scan(&mosque.ID, &mosque.Name, &mosque.Timezone, &mosque.CreatedAt)
	if err != nil {
		return nil, translate(err, "mosque", "get mosque")
	}
	return mosque, nil
}
