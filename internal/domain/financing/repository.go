package financing

import "context"

type Repository interface {
	Create(ctx context.Context, t *Term) error
	GetByID(ctx context.Context, id uint64) (*Term, error)
	ListActive(ctx context.Context) ([]Term, error)
}
