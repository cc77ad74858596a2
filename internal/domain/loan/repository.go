package loan

import (
	"context"
	"time"
)

// Repository covers the loan aggregate: applications plus the schedule
// entries the loan owns. Version-guarded updates return
// store.ErrConcurrencyConflict on a stale expected version.
type Repository interface {
	Create(ctx context.Context, l *LoanApplication) error
	GetByID(ctx context.Context, id uint64) (*LoanApplication, error)
	GetByLoanID(ctx context.Context, loanID string) (*LoanApplication, error)
	List(ctx context.Context) ([]LoanApplication, error)
	ListByStatus(ctx context.Context, status Status) ([]LoanApplication, error)
	UpdateWithVersion(ctx context.Context, l *LoanApplication, expectedVersion uint64) error

	// Archive path only: soft-delete / rebuild from a snapshot.
	Delete(ctx context.Context, id uint64, deletedBy string) error
	Reinstate(ctx context.Context, l *LoanApplication, entries []ScheduleEntry) error

	CreateEntries(ctx context.Context, entries []ScheduleEntry) error
	GetEntry(ctx context.Context, entryID uint64) (*ScheduleEntry, error)
	EntriesByLoanID(ctx context.Context, loanID uint64) ([]ScheduleEntry, error)
	ListEntriesDueBefore(ctx context.Context, reference time.Time) ([]ScheduleEntry, error)
	UpdateEntryWithVersion(ctx context.Context, e *ScheduleEntry, expectedVersion uint64) error
	DeleteEntriesByLoanID(ctx context.Context, loanID uint64) error
}
