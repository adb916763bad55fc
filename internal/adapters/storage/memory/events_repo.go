package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/events/details"
)

type eventRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[int64]events.Event),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) (events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(e), nil
}

// CreateReplacement hace insert + RE-SCHEDULED bajo el mismo lock.
func (r *eventRepo) CreateReplacement(ctx context.Context, e events.Event, replacedID int64, at time.Time) (events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[replacedID]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	if r.hasReplacementLocked(replacedID) {
		return events.Event{}, events.ErrAlreadyReplaced
	}

	created := r.insertLocked(e)
	old.Status = events.StatusRescheduled
	old.LastModified = at
	r.byID[replacedID] = old
	return created, nil
}

func (r *eventRepo) insertLocked(e events.Event) events.Event {
	r.nextID++
	e.ID = r.nextID
	e = clone(e)
	r.byID[e.ID] = e
	return clone(e)
}

func (r *eventRepo) GetByID(ctx context.Context, id int64) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return clone(e), nil
}

func (r *eventRepo) SetStatus(ctx context.Context, id int64, status events.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return events.ErrNotFound
	}
	if r.hasReplacementLocked(id) {
		return events.ErrStatusLocked
	}
	e.Status = status
	e.LastModified = at
	r.byID[id] = e
	return nil
}

func (r *eventRepo) SetAcknowledged(ctx context.Context, id int64, ack bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return events.ErrNotFound
	}
	e.Acknowledged = ack
	e.LastModified = at
	r.byID[id] = e
	return nil
}

func (r *eventRepo) Find(ctx context.Context, f events.Filter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[events.Status]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[s] = struct{}{}
	}
	kinds := make(map[events.Kind]struct{}, len(f.Kinds))
	for _, k := range f.Kinds {
		kinds[k] = struct{}{}
	}

	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if f.Since != nil && e.Start.Before(*f.Since) {
			continue
		}
		if f.ProviderID != nil && e.ProviderID != *f.ProviderID {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[e.Status]; !ok {
				continue
			}
		}
		if len(kinds) > 0 {
			if _, ok := kinds[e.Kind]; !ok {
				continue
			}
		}
		out = append(out, clone(e))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *eventRepo) hasReplacementLocked(id int64) bool {
	for _, e := range r.byID {
		if rid, ok := e.Replaces(); ok && rid == id {
			return true
		}
	}
	return false
}

func (r *eventRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return events.ErrNotFound
	}
	e.LastModified = at
	r.byID[id] = e
	return nil
}

// clone copia los punteros para que el caller no mute el estado interno.
func clone(e events.Event) events.Event {
	if e.End != nil {
		end := *e.End
		e.End = &end
	}
	if e.Maintenance != nil {
		m := details.Maintenance{}
		if e.Maintenance.Replaces != nil {
			rid := *e.Maintenance.Replaces
			m.Replaces = &rid
		}
		e.Maintenance = &m
	}
	if e.Outage != nil {
		o := *e.Outage
		if o.EstimatedTimeToRepair != nil {
			etr := *o.EstimatedTimeToRepair
			o.EstimatedTimeToRepair = &etr
		}
		e.Outage = &o
	}
	return e
}
