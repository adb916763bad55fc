package events

import (
	"context"
	"time"
)

type Repository interface {
	// Create asigna ID y devuelve el evento persistido.
	Create(ctx context.Context, e Event) (Event, error)

	// CreateReplacement inserta e y pasa replacedID a RE-SCHEDULED en una
	// sola unidad atómica. ErrAlreadyReplaced si replacedID ya tiene reemplazo.
	CreateReplacement(ctx context.Context, e Event, replacedID int64, at time.Time) (Event, error)

	GetByID(ctx context.Context, id int64) (Event, error)

	// SetStatus escribe solo status y last_modified, y solo si el evento no
	// tiene reemplazo (ErrStatusLocked). El chequeo y la escritura son atómicos
	// respecto de CreateReplacement.
	SetStatus(ctx context.Context, id int64, status Status, at time.Time) error

	// SetAcknowledged escribe solo acknowledged y last_modified.
	SetAcknowledged(ctx context.Context, id int64, ack bool, at time.Time) error

	Find(ctx context.Context, f Filter) ([]Event, error)

	// Touch actualiza solo last_modified.
	Touch(ctx context.Context, id int64, at time.Time) error
}

// Filter: todos los campos son opcionales; vacío => sin restricción.
// Orden del resultado: start ascendente, luego id.
type Filter struct {
	Since      *time.Time // start >= Since
	ProviderID *int64
	Statuses   []Status
	Kinds      []Kind
}
