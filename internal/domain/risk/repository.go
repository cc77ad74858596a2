package risk

import "context"

type Repository interface {
	// Create appends an immutable assessment row.
	Create(ctx context.Context, a *Assessment) error

	// LatestByLoanID returns the newest assessment for a loan.
	LatestByLoanID(ctx context.Context, loanID uint64) (*Assessment, error)

	// ListByLoanID returns the full history, newest first.
	ListByLoanID(ctx context.Context, loanID uint64) ([]Assessment, error)
}
