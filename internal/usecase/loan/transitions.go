package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
	auditDomain "motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/authz"
	loanDomain "motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/uow"
	riskuc "motofin-ledger/internal/usecase/risk"
)

func loadLoan(ctx context.Context, r uow.Repos, loanID string) (*loanDomain.LoanApplication, error) {
	l, err := r.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func flipAsset(ctx context.Context, r uow.Repos, assetID uint64, from, to assetDomain.Status) error {
	a, err := r.Assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return assetDomain.ErrNotFound
		}
		return err
	}
	if a.Status != from {
		return nil
	}
	expected := a.Version
	a.Status = to
	return r.Assets.UpdateWithVersion(ctx, a, expected)
}

func auditTransition(ctx context.Context, r uow.Repos, actorID string, l *loanDomain.LoanApplication, action auditDomain.Action, description string, before loanDomain.Status) error {
	entry, err := auditDomain.NewEntry(actorID, "loans", l.ID, action, description,
		map[string]any{"status": before}, map[string]any{"status": l.Status})
	if err != nil {
		return err
	}
	return r.Audits.Create(ctx, entry)
}

// Approve moves pending -> approved. Approval and schedule generation are one
// atomic unit: a schedule that fails to build leaves the loan pending.
func (u *Usecase) Approve(ctx context.Context, in TransitionInput) (*LoanDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapApproveLoans) {
		return nil, authz.ErrForbidden
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := loadLoan(ctx, r, in.LoanID)
		if err != nil {
			return err
		}
		before := l.Status
		if err := l.Transition(loanDomain.StatusApproved); err != nil {
			return err
		}

		now := time.Now().UTC()
		entries, totals, err := loanDomain.BuildSchedule(l.Principal, l.InterestRate, l.TermYears, now)
		if err != nil {
			return err
		}
		l.MonthlyPayment = totals.MonthlyPayment
		l.TotalAmount = totals.TotalAmount
		l.ApprovedAt = &now

		if _, err := riskuc.Evaluate(ctx, r, l, u.riskParams, "approved"); err != nil {
			return err
		}
		// The caller's version guards the transition: stale readers conflict
		// here instead of overwriting newer state.
		if err := r.Loans.UpdateWithVersion(ctx, l, in.Version); err != nil {
			return err
		}

		for i := range entries {
			entries[i].LoanID = l.ID
		}
		if err := r.Loans.CreateEntries(ctx, entries); err != nil {
			return err
		}

		if err := auditTransition(ctx, r, in.ActorID, l, auditDomain.ActionLoanApproved,
			fmt.Sprintf("loan %s approved, %d installments generated", l.LoanID, len(entries)), before); err != nil {
			return err
		}

		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Reject moves pending -> rejected and releases the reserved asset.
func (u *Usecase) Reject(ctx context.Context, in TransitionInput) (*LoanDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapApproveLoans) {
		return nil, authz.ErrForbidden
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := loadLoan(ctx, r, in.LoanID)
		if err != nil {
			return err
		}
		before := l.Status
		if err := l.Transition(loanDomain.StatusRejected); err != nil {
			return err
		}
		if err := r.Loans.UpdateWithVersion(ctx, l, in.Version); err != nil {
			return err
		}
		if err := flipAsset(ctx, r, l.AssetID, assetDomain.StatusReserved, assetDomain.StatusAvailable); err != nil {
			return err
		}

		description := fmt.Sprintf("loan %s rejected", l.LoanID)
		if in.Reason != "" {
			description += ": " + in.Reason
		}
		if err := auditTransition(ctx, r, in.ActorID, l, auditDomain.ActionLoanRejected, description, before); err != nil {
			return err
		}

		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Activate moves approved -> active explicitly (the first recorded payment
// activates implicitly). The financed asset flips reserved -> sold.
func (u *Usecase) Activate(ctx context.Context, in TransitionInput) (*LoanDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapApproveLoans) {
		return nil, authz.ErrForbidden
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := loadLoan(ctx, r, in.LoanID)
		if err != nil {
			return err
		}
		before := l.Status
		if err := l.Transition(loanDomain.StatusActive); err != nil {
			return err
		}
		now := time.Now().UTC()
		l.ActivatedAt = &now
		if err := r.Loans.UpdateWithVersion(ctx, l, in.Version); err != nil {
			return err
		}
		if err := flipAsset(ctx, r, l.AssetID, assetDomain.StatusReserved, assetDomain.StatusSold); err != nil {
			return err
		}
		if err := auditTransition(ctx, r, in.ActorID, l, auditDomain.ActionLoanActivated,
			fmt.Sprintf("loan %s activated", l.LoanID), before); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Complete moves active -> completed, permitted only once every schedule
// entry is paid.
func (u *Usecase) Complete(ctx context.Context, in TransitionInput) (*LoanDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapApproveLoans) {
		return nil, authz.ErrForbidden
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := loadLoan(ctx, r, in.LoanID)
		if err != nil {
			return err
		}
		before := l.Status
		if err := l.Transition(loanDomain.StatusCompleted); err != nil {
			return err
		}

		entries, err := r.Loans.EntriesByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		for i := range entries {
			if entries[i].Status != loanDomain.EntryPaid {
				return fmt.Errorf("%w: entry %d is %s", loanDomain.ErrIncompleteSchedule, entries[i].Sequence, entries[i].Status)
			}
		}

		now := time.Now().UTC()
		l.CompletedAt = &now
		if err := r.Loans.UpdateWithVersion(ctx, l, in.Version); err != nil {
			return err
		}
		if err := auditTransition(ctx, r, in.ActorID, l, auditDomain.ActionLoanCompleted,
			fmt.Sprintf("loan %s completed", l.LoanID), before); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
