package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vendor-notices/internal/adapters/auth/dbtoken"
)

type TokensRepo struct {
	db *sql.DB
}

func NewTokensRepo(db *sql.DB) *TokensRepo {
	return &TokensRepo{db: db}
}

// Las capabilities se guardan como CSV.
func (r *TokensRepo) Create(ctx context.Context, t dbtoken.APIToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_tokens (
			id, user_id, username, superuser, capabilities,
			secret_hash, enabled, expires_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		t.ID,
		t.UserID,
		t.Username,
		t.Superuser,
		strings.Join(t.Capabilities, ","),
		t.SecretHash,
		t.Enabled,
		t.ExpiresAt,
		t.CreatedAt,
	)
	return err
}

func (r *TokensRepo) GetByID(ctx context.Context, id string) (dbtoken.APIToken, error) {
	var (
		t       dbtoken.APIToken
		caps    string
		expires sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id::text, user_id, username, superuser, capabilities,
			secret_hash, enabled, expires_at, created_at
		FROM api_tokens
		WHERE id = $1
	`, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Username,
		&t.Superuser,
		&caps,
		&t.SecretHash,
		&t.Enabled,
		&expires,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbtoken.APIToken{}, dbtoken.ErrNotFound
		}
		return dbtoken.APIToken{}, err
	}

	for _, c := range strings.Split(caps, ",") {
		if c = strings.TrimSpace(c); c != "" {
			t.Capabilities = append(t.Capabilities, c)
		}
	}
	if expires.Valid {
		exp := expires.Time
		t.ExpiresAt = &exp
	}
	return t, nil
}
