package uow

import (
	"context"

	"motofin-ledger/internal/domain/archive"
	"motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/financing"
	"motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/risk"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans    loan.Repository
	Assets   asset.Repository
	Terms    financing.Repository
	Risks    risk.Repository
	Audits   audit.Repository
	Archives archive.Repository
}

// UnitOfWork runs fn atomically: every repository call inside fn commits or
// rolls back as one unit. Cross-record operations (approve + schedule batch,
// mutation + audit row) must never be observable partially applied.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
