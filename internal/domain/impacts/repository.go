package impacts

import (
	"context"

	"vendor-notices/internal/domain/targets"
)

type Repository interface {
	// Create devuelve ErrDuplicate si ya existe (event, target).
	Create(ctx context.Context, i Impact) error
	GetByID(ctx context.Context, id string) (Impact, error)
	Update(ctx context.Context, i Impact) error
	Delete(ctx context.Context, id string) error

	// ListByEvents agrupa por evento; un solo round-trip para el feed.
	ListByEvents(ctx context.Context, events []targets.Ref) (map[targets.Ref][]Impact, error)
	ListByTarget(ctx context.Context, target targets.Ref) ([]Impact, error)
}
