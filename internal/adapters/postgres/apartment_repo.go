package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// ApartmentRepo implements ports.ApartmentRepository.
type ApartmentRepo struct {
	db *DB
}

func NewApartmentRepo(db *DB) *ApartmentRepo {
	return &ApartmentRepo{db: db}
}

func (r *ApartmentRepo) Create(ctx context.Context, apt *domain.Apartment) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO apartments (description)
		VALUES ($1)
		RETURNING id, created_at
	`, apt.Description).Scan(&apt.ID, &apt.CreatedAt)
}

func (r *ApartmentRepo) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	a := &domain.Apartment{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, COALESCE(description, ''), created_at
		FROM apartments WHERE id = $1
	`, id).Scan(&a.ID, &a.Description, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *ApartmentRepo) List(ctx context.Context, limit, offset int) ([]domain.Apartment, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM apartments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, COALESCE(description, ''), created_at
		FROM apartments
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apts []domain.Apartment
	for rows.Next() {
		var a domain.Apartment
		if err := rows.Scan(&a.ID, &a.Description, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		apts = append(apts, a)
	}
	return apts, total, rows.Err()
}

func (r *ApartmentRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
