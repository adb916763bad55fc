package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vendor-notices/internal/config"
	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/providers"
)

// ParamError identifica el parámetro de query que no se pudo resolver (=> 400).
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Spec es el filtro validado de una request. No se persiste.
type Spec struct {
	PastDays int
	Since    time.Time

	// nil => todos los proveedores.
	Provider *providers.Provider

	// Vacío => sin restricción de estado. Ordenado y sin duplicados.
	Statuses []events.Status
}

// Filter traduce el Spec al filtro del repositorio de eventos.
func (s Spec) Filter() events.Filter {
	since := s.Since
	f := events.Filter{Since: &since, Statuses: s.Statuses}
	if s.Provider != nil {
		id := s.Provider.ID
		f.ProviderID = &id
	}
	return f
}

type ProviderLookup interface {
	GetByID(ctx context.Context, id int64) (providers.Provider, error)
	GetBySlug(ctx context.Context, slug string) (providers.Provider, error)
}

type FilterResolver struct {
	providers       ProviderLookup
	defaultPastDays int
	now             func() time.Time
}

func NewFilterResolver(provs ProviderLookup, defaultPastDays int) *FilterResolver {
	if defaultPastDays < 0 || defaultPastDays > config.MaxPastDays {
		defaultPastDays = config.DefaultPastDays
	}
	return &FilterResolver{
		providers:       provs,
		defaultPastDays: defaultPastDays,
		now:             time.Now,
	}
}

// Resolve valida los parámetros del feed.
//   - past_days ausente, no numérico o fuera de [0,365] => default de config
//   - provider (slug) gana sobre provider_id; desconocido => *ParamError
//   - status: CSV intersectado con el enum; vacío => sin restricción
func (fr *FilterResolver) Resolve(ctx context.Context, q url.Values) (Spec, error) {
	spec := Spec{PastDays: fr.pastDays(q.Get("past_days"))}
	spec.Since = fr.now().UTC().Add(-time.Duration(spec.PastDays) * 24 * time.Hour)

	p, err := fr.provider(ctx, q)
	if err != nil {
		return Spec{}, err
	}
	spec.Provider = p

	spec.Statuses = ParseStatuses(q.Get("status"))
	return spec, nil
}

func (fr *FilterResolver) pastDays(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fr.defaultPastDays
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > config.MaxPastDays {
		return fr.defaultPastDays
	}
	return n
}

func (fr *FilterResolver) provider(ctx context.Context, q url.Values) (*providers.Provider, error) {
	if slug := strings.TrimSpace(q.Get("provider")); slug != "" {
		p, err := fr.providers.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, providers.ErrNotFound) {
				return nil, &ParamError{Param: "provider", Reason: "unknown provider " + strconv.Quote(slug)}
			}
			return nil, err
		}
		return &p, nil
	}

	raw := strings.TrimSpace(q.Get("provider_id"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &ParamError{Param: "provider_id", Reason: "must be a positive integer"}
	}
	p, err := fr.providers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return nil, &ParamError{Param: "provider_id", Reason: "unknown provider " + raw}
		}
		return nil, err
	}
	return &p, nil
}

// ParseStatuses descarta tokens desconocidos en silencio.
func ParseStatuses(raw string) []events.Status {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []events.Status
	for _, tok := range strings.Split(raw, ",") {
		if st, ok := events.ParseStatus(tok); ok {
			out = append(out, st)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return events.SortStatuses(out)
}
