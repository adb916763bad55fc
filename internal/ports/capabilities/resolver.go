package capabilities

import (
	"context"

	"vendor-notices/internal/ports/auth"
)

const (
	EventsRead  = "events:read"
	EventsWrite = "events:write"
)

// CapabilityCheck es la pregunta "¿puede esta identidad hacer X?".
type CapabilityCheck struct {
	Identity   auth.Identity
	Capability string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
