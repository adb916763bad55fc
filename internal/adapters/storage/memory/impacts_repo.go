package memory

import (
	"context"
	"sort"
	"sync"

	"vendor-notices/internal/domain/impacts"
	"vendor-notices/internal/domain/targets"
)

type impactRepo struct {
	mu   sync.RWMutex
	byID map[string]impacts.Impact
}

func NewImpactRepo() impacts.Repository {
	return &impactRepo{
		byID: make(map[string]impacts.Impact),
	}
}

func (r *impactRepo) Create(ctx context.Context, i impacts.Impact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.byID {
		if it.Event == i.Event && it.Target == i.Target {
			return impacts.ErrDuplicate
		}
	}
	r.byID[i.ID] = i
	return nil
}

func (r *impactRepo) GetByID(ctx context.Context, id string) (impacts.Impact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return impacts.Impact{}, impacts.ErrNotFound
	}
	return i, nil
}

func (r *impactRepo) Update(ctx context.Context, i impacts.Impact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[i.ID]; !ok {
		return impacts.ErrNotFound
	}
	r.byID[i.ID] = i
	return nil
}

func (r *impactRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return impacts.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *impactRepo) ListByEvents(ctx context.Context, refs []targets.Ref) (map[targets.Ref][]impacts.Impact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[targets.Ref]struct{}, len(refs))
	for _, ref := range refs {
		want[ref] = struct{}{}
	}

	out := make(map[targets.Ref][]impacts.Impact)
	for _, i := range r.byID {
		if _, ok := want[i.Event]; ok {
			out[i.Event] = append(out[i.Event], i)
		}
	}
	for k := range out {
		sortImpacts(out[k])
	}
	return out, nil
}

func (r *impactRepo) ListByTarget(ctx context.Context, target targets.Ref) ([]impacts.Impact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]impacts.Impact, 0)
	for _, i := range r.byID {
		if i.Target == target {
			out = append(out, i)
		}
	}
	sortImpacts(out)
	return out, nil
}

// Orden estable: por creación, luego id.
func sortImpacts(items []impacts.Impact) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
