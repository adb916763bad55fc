package impacts

import (
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/targets"
)

// Impact relaciona un evento con un objeto afectado de cualquier tipo admitido.
// Es dueño de las referencias, no de los objetos referenciados.
type Impact struct {
	ID       string
	Event    targets.Ref
	Target   targets.Ref
	Severity Severity

	CreatedAt time.Time
	UpdatedAt time.Time
}

// View es un Impact con su target ya resuelto para mostrar.
type View struct {
	Impact Impact
	Target targets.Resolution
}

// HistoryEntry es una fila del historial de eventos de un target.
type HistoryEntry struct {
	Impact Impact
	Event  events.Event
}
