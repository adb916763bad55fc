package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"vendor-notices/internal/ports/auth"
)

const cacheSize = 1024

// Verifier implementa auth.TokenVerifier usando Odin. Los clientes de
// calendario repiten el mismo token en cada poll: las identidades verificadas
// se cachean por digest del token, nunca por el token en claro.
type Verifier struct {
	client *Client
	cache  *expirable.LRU[uint64, auth.Identity] // nil => sin cache
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

// WithCache activa el cache de identidades verificadas (ttl <= 0 => sin cache).
func (v *Verifier) WithCache(ttl time.Duration) *Verifier {
	v.cache = nil
	if ttl > 0 {
		v.cache = expirable.NewLRU[uint64, auth.Identity](cacheSize, nil, ttl)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if v == nil || v.client == nil {
		return auth.Identity{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	key := xxhash.Sum64String(token)
	if v.cache != nil {
		if id, ok := v.cache.Get(key); ok {
			return id, nil
		}
	}

	id, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// Credencial rechazada => ErrInvalidToken; upstream caído se propaga tal cual.
		if errors.Is(err, ErrOdinUnauthorized) {
			return auth.Identity{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
		}
		return auth.Identity{}, fmt.Errorf("odin verify failed: %w", err)
	}
	if v.cache != nil {
		v.cache.Add(key, id)
	}
	return id, nil
}
