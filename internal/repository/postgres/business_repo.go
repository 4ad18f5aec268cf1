package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consogab/backend/internal/domain"
)

type BusinessRepo struct {
	pool *pgxpool.Pool
}

func NewBusinessRepo(pool *pgxpool.Pool) *BusinessRepo {
	return &BusinessRepo{pool: pool}
}

func (r *BusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	query := `
		INSERT INTO businesses (id, owner_id, name, description, category, city, phone, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		business.ID, business.OwnerID, business.Name, business.Description,
		business.Category, business.City, business.Phone, business.LogoURL,
		business.CreatedAt, business.UpdatedAt,
	)
	return err
}

func (r *BusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	query := `
		SELECT id, owner_id, name, description, category, city, phone, logo_url, created_at, updated_at
		FROM businesses
		WHERE id = $1`
	var b domain.Business
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Category,
		&b.City, &b.Phone, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &b, err
}

func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Business, error) {
	query := `
		SELECT id, owner_id, name, description, category, city, phone, logo_url, created_at, updated_at
		FROM businesses
		WHERE owner_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBusinesses(rows)
}

// Search filters businesses by free-text name match, category and city.
// Empty filters are skipped. Name matches rank before the rest.
func (r *BusinessRepo) Search(ctx context.Context, query, category, city string, limit int) ([]domain.Business, error) {
	sql := `
		SELECT id, owner_id, name, description, category, city, phone, logo_url, created_at, updated_at
		FROM businesses
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
			AND ($2 = '' OR category = $2)
			AND ($3 = '' OR city = $3)
		ORDER BY (name ILIKE '%' || $1 || '%') DESC, created_at DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, sql, query, category, city, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBusinesses(rows)
}

func (r *BusinessRepo) Update(ctx context.Context, business *domain.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, description = $2, category = $3, city = $4, phone = $5, logo_url = $6, updated_at = $7
		WHERE id = $8`
	_, err := r.pool.Exec(ctx, query,
		business.Name, business.Description, business.Category, business.City,
		business.Phone, business.LogoURL, time.Now(), business.ID,
	)
	return err
}

func scanBusinesses(rows pgx.Rows) ([]domain.Business, error) {
	var businesses []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Category,
			&b.City, &b.Phone, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}
