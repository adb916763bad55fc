package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken: token inexistente, expirado, revocado o mal formado.
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier verifica un secreto (token) y devuelve la identidad o error.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// SessionStore resuelve una sesión interactiva ya establecida.
// ok=false si la sesión no existe o expiró.
type SessionStore interface {
	Lookup(ctx context.Context, sessionID string) (id Identity, ok bool, err error)
}
