package static

import (
	"context"
	"strings"

	"vendor-notices/internal/ports/capabilities"
)

// Resolver decide con lo que trae la identidad (claims del token o de la sesión).
// Superuser => todo; "*" => todo; anónimo => anonymousCaps de config.
type Resolver struct {
	anonymousCaps []string
	allowAll      bool
}

func NewResolver(anonymousCaps []string) *Resolver {
	return &Resolver{anonymousCaps: anonymousCaps}
}

// WithAllowAll concede cualquier capability, también a anónimos (solo desarrollo).
func (r *Resolver) WithAllowAll(allow bool) *Resolver {
	r.allowAll = allow
	return r
}

func (r *Resolver) HasFeature(_ context.Context, in capabilities.CapabilityCheck) (bool, error) {
	want := strings.TrimSpace(in.Capability)
	if want == "" {
		return false, nil
	}
	if r.allowAll {
		return true, nil
	}

	id := in.Identity
	if id.Anonymous {
		return contains(r.anonymousCaps, want), nil
	}
	if id.UserID == "" {
		return false, nil
	}
	if id.Superuser {
		return true, nil
	}
	return contains(id.Capabilities, want) || contains(id.Capabilities, "*"), nil
}

func contains(list []string, want string) bool {
	for _, c := range list {
		if strings.TrimSpace(c) == want {
			return true
		}
	}
	return false
}
