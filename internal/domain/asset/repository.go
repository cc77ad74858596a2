package asset

import "context"

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id uint64) (*Asset, error)
	List(ctx context.Context) ([]Asset, error)
	UpdateWithVersion(ctx context.Context, a *Asset, expectedVersion uint64) error

	// Archive path only.
	Delete(ctx context.Context, id uint64, deletedBy string) error
	Reinstate(ctx context.Context, a *Asset) error
}
