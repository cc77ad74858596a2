package auditmock

import (
	"context"
	"errors"
	"time"

	domain "motofin-ledger/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies audit.Repository.
// Only methods a test fills in do anything useful.
type Repo struct {
	CreateFn       func(ctx context.Context, e *domain.Entry) error
	ListByRecordFn func(ctx context.Context, module string, recordID uint64) ([]domain.Entry, error)
	CountSinceFn   func(ctx context.Context, since time.Time) ([]domain.MutationCount, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Entry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByRecord(ctx context.Context, module string, recordID uint64) ([]domain.Entry, error) {
	if m.ListByRecordFn != nil {
		return m.ListByRecordFn(ctx, module, recordID)
	}
	return nil, errors.New("not implemented")
}

func (m *Repo) CountSince(ctx context.Context, since time.Time) ([]domain.MutationCount, error) {
	if m.CountSinceFn != nil {
		return m.CountSinceFn(ctx, since)
	}
	return nil, errors.New("not implemented")
}
