package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consogab/backend/internal/domain"
)

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

func (r *FavoriteRepo) Add(ctx context.Context, userID, businessID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (user_id, business_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, business_id) DO NOTHING`,
		userID, businessID, time.Now(),
	)
	return err
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, businessID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND business_id = $2`,
		userID, businessID,
	)
	return err
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	query := `
		SELECT f.user_id, f.business_id, f.created_at,
			b.name, b.category, b.city, b.logo_url
		FROM favorites f
		JOIN businesses b ON b.id = f.business_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(
			&f.UserID, &f.BusinessID, &f.CreatedAt,
			&f.BusinessName, &f.BusinessCategory, &f.BusinessCity, &f.BusinessLogoURL,
		); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}
