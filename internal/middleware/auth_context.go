package middleware

import (
	"context"
	"net/http"
	"strings"

	"vendor-notices/internal/platform/logger"
	"vendor-notices/internal/ports/auth"
	"vendor-notices/internal/ports/capabilities"
)

type ctxKey string

const (
	tokenIdentityKey   ctxKey = "token_identity"
	sessionIdentityKey ctxKey = "session_identity"
)

type SessionOptions struct {
	Store  auth.SessionStore // puede ser nil
	Cookie string

	// DevMode: si viene header X-Debug-User-ID => se trata como sesión.
	DevMode bool

	Log logger.Logger
}

// SessionContext resuelve la sesión interactiva (cookie) y la deja en el ctx.
// No corta el request: los handlers deciden 401/403.
func SessionContext(opts SessionOptions) func(http.Handler) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.DevMode {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), debugIdentity(uid, r))))
					return
				}
			}

			if opts.Store == nil || opts.Cookie == "" {
				next.ServeHTTP(w, r)
				return
			}

			c, err := r.Cookie(opts.Cookie)
			if err != nil || strings.TrimSpace(c.Value) == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, ok, err := opts.Store.Lookup(r.Context(), strings.TrimSpace(c.Value))
			if err != nil {
				logger.FromContext(r.Context(), log).Warn("session lookup failed", map[string]any{"err": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id.Method = auth.MethodSession
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

// TokenContext verifica el token del header Authorization (Bearer/Token) para
// las rutas de API. Token inválido => sin identidad de token.
func TokenContext(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := HeaderToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			id.Method = auth.MethodHeaderToken
			ctx := context.WithValue(r.Context(), tokenIdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, sessionIdentityKey, id)
}

// GetSession devuelve la identidad de sesión (cookie o dev header), si existe.
func GetSession(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(sessionIdentityKey).(auth.Identity)
	return id, ok
}

// GetIdentity: token de header primero, sesión después.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	if id, ok := ctx.Value(tokenIdentityKey).(auth.Identity); ok {
		return id, true
	}
	return GetSession(ctx)
}

// Authorize exige identidad + capability. Escribe 401/403 y devuelve ok=false
// si no se cumple.
func Authorize(w http.ResponseWriter, r *http.Request, caps capabilities.CapabilitiesResolver, capability string) (auth.Identity, bool) {
	id, ok := GetIdentity(r.Context())
	if !ok || strings.TrimSpace(id.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Identity{}, false
	}

	allowed, err := caps.HasFeature(r.Context(), capabilities.CapabilityCheck{Identity: id, Capability: capability})
	if err != nil || !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Identity{}, false
	}
	return id, true
}

// HeaderToken extrae el token de "Bearer <t>" o "Token <t>".
func HeaderToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func debugIdentity(uid string, r *http.Request) auth.Identity {
	caps := []string{capabilities.EventsRead, capabilities.EventsWrite}
	if v, ok := r.Header["X-Debug-Capabilities"]; ok {
		caps = nil
		for _, c := range strings.Split(strings.Join(v, ","), ",") {
			if c = strings.TrimSpace(c); c != "" {
				caps = append(caps, c)
			}
		}
	}
	return auth.Identity{
		UserID:       uid,
		Username:     uid,
		Capabilities: caps,
		Method:       auth.MethodSession,
	}
}
