package providers

import "context"

type Repository interface {
	Create(ctx context.Context, p Provider) (Provider, error)
	GetByID(ctx context.Context, id int64) (Provider, error)
	GetBySlug(ctx context.Context, slug string) (Provider, error)
	List(ctx context.Context) ([]Provider, error)
}
