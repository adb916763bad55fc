package feed

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vendor-notices/internal/middleware"
	"vendor-notices/internal/ports/auth"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resuelve la identidad del feed. Orden estricto, gana el primero:
//  1. ?token= (clientes de calendario no mandan headers ni cookies)
//  2. Authorization: Bearer|Token
//  3. sesión interactiva (ya resuelta por middleware.SessionContext)
//
// Un token presente pero inválido falla sin caer al siguiente método.
type Authenticator struct {
	verifier      auth.TokenVerifier
	loginRequired bool
}

func NewAuthenticator(verifier auth.TokenVerifier, loginRequired bool) *Authenticator {
	return &Authenticator{verifier: verifier, loginRequired: loginRequired}
}

func (a *Authenticator) Authenticate(r *http.Request) (auth.Identity, error) {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return a.verify(r, token, auth.MethodQueryToken)
	}

	if token := middleware.HeaderToken(r.Header.Get("Authorization")); token != "" {
		return a.verify(r, token, auth.MethodHeaderToken)
	}

	if id, ok := middleware.GetSession(r.Context()); ok && !id.IsZero() {
		id.Method = auth.MethodSession
		return id, nil
	}

	if !a.loginRequired {
		return auth.Anonymous(), nil
	}
	return auth.Identity{}, ErrUnauthenticated
}

func (a *Authenticator) verify(r *http.Request, token string, method auth.Method) (auth.Identity, error) {
	if a.verifier == nil {
		return auth.Identity{}, ErrUnauthenticated
	}
	id, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return auth.Identity{}, fmt.Errorf("%w: %s", ErrUnauthenticated, method)
		}
		// Falla del backend de tokens: no se degrada a anónimo.
		return auth.Identity{}, fmt.Errorf("%w: %s: %v", ErrUnauthenticated, method, err)
	}
	if id.IsZero() {
		return auth.Identity{}, ErrUnauthenticated
	}
	id.Method = method
	return id, nil
}
