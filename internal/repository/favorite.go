package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/merzah/merzah/internal/database"
)

type FavoriteRepository struct {
	db *database.DB
}

func NewFavoriteRepository(db *database.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Add(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO favorite (user_id, mosque_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, mosque_id) DO NOTHING`,
		userID, mosqueID,
	)
	return translate(err, "mosque", "add favorite")
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID string, mosqueID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM favorite WHERE user_id = $1 AND mosque_id = $2`,
		userID, mosqueID,
	)
	return translate(err, "favorite", "remove favorite")
}

func (r *FavoriteRepository) MosqueIDsByUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT mosque_id FROM favorite WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, translate(err, "favorite", "list favorites")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "favorite", "scan favorite")
		}
		ids = append(ids, id)
	}
	return ids, translate(rows.Err(), "favorite", "iterate favorites")
}
