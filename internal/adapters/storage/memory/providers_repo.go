package memory

import (
	"context"
	"sort"
	"sync"

	"vendor-notices/internal/domain/providers"
)

type providerRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]providers.Provider
}

func NewProviderRepo() providers.Repository {
	return &providerRepo{
		byID: make(map[int64]providers.Provider),
	}
}

func (r *providerRepo) Create(ctx context.Context, p providers.Provider) (providers.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.byID {
		if it.Slug == p.Slug {
			return providers.Provider{}, providers.ErrDuplicate
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.byID[p.ID] = p
	return p, nil
}

func (r *providerRepo) GetByID(ctx context.Context, id int64) (providers.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return providers.Provider{}, providers.ErrNotFound
	}
	return p, nil
}

func (r *providerRepo) GetBySlug(ctx context.Context, slug string) (providers.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return providers.Provider{}, providers.ErrNotFound
}

func (r *providerRepo) List(ctx context.Context) ([]providers.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]providers.Provider, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}
