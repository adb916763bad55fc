package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vendor-notices/internal/domain/providers"
)

type ProvidersRepo struct {
	db *sql.DB
}

func NewProvidersRepo(db *sql.DB) *ProvidersRepo {
	return &ProvidersRepo{db: db}
}

func (r *ProvidersRepo) Create(ctx context.Context, p providers.Provider) (providers.Provider, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO providers (slug, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Slug, p.Name, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return providers.Provider{}, providers.ErrDuplicate
		}
		return providers.Provider{}, err
	}
	return p, nil
}

func (r *ProvidersRepo) GetByID(ctx context.Context, id int64) (providers.Provider, error) {
	return r.getOne(ctx, `SELECT id, slug, name, created_at FROM providers WHERE id = $1`, id)
}

func (r *ProvidersRepo) GetBySlug(ctx context.Context, slug string) (providers.Provider, error) {
	return r.getOne(ctx, `SELECT id, slug, name, created_at FROM providers WHERE slug = $1`, slug)
}

func (r *ProvidersRepo) getOne(ctx context.Context, query string, arg any) (providers.Provider, error) {
	var p providers.Provider
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return providers.Provider{}, providers.ErrNotFound
		}
		return providers.Provider{}, err
	}
	return p, nil
}

func (r *ProvidersRepo) List(ctx context.Context) ([]providers.Provider, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, slug, name, created_at FROM providers ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]providers.Provider, 0)
	for rows.Next() {
		var p providers.Provider
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
