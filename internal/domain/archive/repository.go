package archive

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uint64) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	ListByModule(ctx context.Context, module Module) ([]Entry, error)

	// UpdateWithVersion flips status/restoredAt under a version guard.
	UpdateWithVersion(ctx context.Context, e *Entry, expectedVersion uint64) error
}
