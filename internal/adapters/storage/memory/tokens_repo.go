package memory

import (
	"context"
	"errors"
	"sync"

	"vendor-notices/internal/adapters/auth/dbtoken"
)

type tokenRepo struct {
	mu   sync.RWMutex
	byID map[string]dbtoken.APIToken
}

func NewTokenRepo() dbtoken.Repository {
	return &tokenRepo{
		byID: make(map[string]dbtoken.APIToken),
	}
}

func (r *tokenRepo) Create(ctx context.Context, t dbtoken.APIToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return errors.New("token id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("token already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *tokenRepo) GetByID(ctx context.Context, id string) (dbtoken.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return dbtoken.APIToken{}, dbtoken.ErrNotFound
	}
	return t, nil
}
