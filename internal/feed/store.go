package feed

import (
	"context"
	"errors"
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/impacts"
	"vendor-notices/internal/domain/providers"
	"vendor-notices/internal/domain/targets"
)

// Item es un evento con su proveedor e impacts, listo para serializar.
type Item struct {
	Event    events.Event
	Provider providers.Provider
	Impacts  []impacts.Impact
}

// Store es la consulta de solo lectura que usa el feed.
type Store interface {
	Find(ctx context.Context, spec Spec) ([]Item, error)
}

type EventFinder interface {
	Find(ctx context.Context, f events.Filter) ([]events.Event, error)
}

type ImpactLister interface {
	ListByEvents(ctx context.Context, refs []targets.Ref) (map[targets.Ref][]impacts.Impact, error)
}

type ProviderGetter interface {
	GetByID(ctx context.Context, id int64) (providers.Provider, error)
}

// EventStore compone eventos + impacts (en lote) + proveedores.
type EventStore struct {
	events    EventFinder
	impacts   ImpactLister
	providers ProviderGetter
}

func NewEventStore(ev EventFinder, imp ImpactLister, provs ProviderGetter) *EventStore {
	return &EventStore{events: ev, impacts: imp, providers: provs}
}

func (s *EventStore) Find(ctx context.Context, spec Spec) ([]Item, error) {
	evs, err := s.events.Find(ctx, spec.Filter())
	if err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		return []Item{}, nil
	}

	refs := make([]targets.Ref, 0, len(evs))
	for _, e := range evs {
		refs = append(refs, e.Ref())
	}
	byEvent, err := s.impacts.ListByEvents(ctx, refs)
	if err != nil {
		return nil, err
	}

	provs := map[int64]providers.Provider{}
	if spec.Provider != nil {
		provs[spec.Provider.ID] = *spec.Provider
	}

	out := make([]Item, 0, len(evs))
	for _, e := range evs {
		p, ok := provs[e.ProviderID]
		if !ok {
			p, err = s.providers.GetByID(ctx, e.ProviderID)
			if err != nil && !errors.Is(err, providers.ErrNotFound) {
				return nil, err
			}
			provs[e.ProviderID] = p
		}
		out = append(out, Item{Event: e, Provider: p, Impacts: byEvent[e.Ref()]})
	}
	return out, nil
}

// Latest devuelve el max(last_modified) del resultado, o nil si está vacío.
func Latest(items []Item) *time.Time {
	var latest *time.Time
	for i := range items {
		lm := items[i].Event.LastModified
		if latest == nil || lm.After(*latest) {
			t := lm
			latest = &t
		}
	}
	return latest
}
