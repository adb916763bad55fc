package plansfeatures

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"vendor-notices/internal/ports/capabilities"
)

const cacheSize = 1024

// Resolver implementa capabilities.CapabilitiesResolver consultando plans-features.
// Los anónimos nunca llegan al upstream: se resuelven con anonymousCaps.
type Resolver struct {
	client        *Client
	allowAll      bool
	anonymousCaps map[string]struct{}

	// capabilities por user id; nil => sin cache
	cache *expirable.LRU[string, map[string]bool]
}

func NewResolver(client *Client, allowAll bool, anonymousCaps []string) *Resolver {
	anon := make(map[string]struct{}, len(anonymousCaps))
	for _, c := range anonymousCaps {
		anon[strings.TrimSpace(c)] = struct{}{}
	}
	return &Resolver{
		client:        client,
		allowAll:      allowAll,
		anonymousCaps: anon,
	}
}

// WithCache cachea la respuesta del upstream por usuario (ttl <= 0 => sin cache).
func (r *Resolver) WithCache(ttl time.Duration) *Resolver {
	r.cache = nil
	if ttl > 0 {
		r.cache = expirable.NewLRU[string, map[string]bool](cacheSize, nil, ttl)
	}
	return r
}

func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	capability := strings.TrimSpace(in.Capability)
	if capability == "" {
		return false, errors.New("capability required")
	}
	if r.allowAll {
		return true, nil
	}
	if in.Identity.Anonymous {
		_, ok := r.anonymousCaps[capability]
		return ok, nil
	}
	if in.Identity.Superuser {
		return true, nil
	}
	if r.client == nil || !r.client.IsConfigured() {
		// Preferimos fallar explícito en vez de permitir sin control.
		return false, ErrPlansNotConfigured
	}

	var (
		caps map[string]bool
		ok   bool
	)
	if r.cache != nil {
		caps, ok = r.cache.Get(in.Identity.UserID)
	}
	if !ok {
		resp, err := r.client.GetCapabilities(ctx, in.Identity.UserID)
		if err != nil {
			return false, err
		}
		caps = resp.Capabilities
		if r.cache != nil {
			r.cache.Add(in.Identity.UserID, caps)
		}
	}
	return caps[capability] || caps["*"], nil
}
