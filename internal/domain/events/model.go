package events

import (
	"strconv"
	"time"

	"vendor-notices/internal/domain/events/details"
	"vendor-notices/internal/domain/targets"
)

type Event struct {
	ID   int64
	Kind Kind

	Name       string
	ProviderID int64
	Status     Status

	Start time.Time
	End   *time.Time // nil => abierto / en curso

	OriginalTimezone string

	Summary        string
	Comments       string
	InternalTicket string
	Acknowledged   bool

	Created      time.Time
	LastModified time.Time

	// Solo uno de los dos según Kind.
	Maintenance *details.Maintenance
	Outage      *details.Outage
}

// Ref es la referencia genérica a este evento (lado "event" de un Impact).
func (e Event) Ref() targets.Ref {
	return targets.NewRef(e.Kind.RefKind(), strconv.FormatInt(e.ID, 10))
}

// Replaces devuelve el id reemplazado (solo mantenimientos).
func (e Event) Replaces() (int64, bool) {
	if e.Maintenance == nil || e.Maintenance.Replaces == nil {
		return 0, false
	}
	return *e.Maintenance.Replaces, true
}

// ParseRefID convierte el id de una targets.Ref de evento a int64.
func ParseRefID(ref targets.Ref) (int64, error) {
	id, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidInput
	}
	return id, nil
}
