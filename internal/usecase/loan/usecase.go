package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
	auditDomain "motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/authz"
	loanDomain "motofin-ledger/internal/domain/loan"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/domain/uow"
	riskuc "motofin-ledger/internal/usecase/risk"
	"motofin-ledger/pkg/id"
)

type Usecase struct {
	uow        uow.UnitOfWork
	auth       authz.Authorizer
	riskParams riskDomain.Params
}

func NewUsecase(tx uow.UnitOfWork, auth authz.Authorizer, params riskDomain.Params) *Usecase {
	return &Usecase{uow: tx, auth: auth, riskParams: params}
}

var employmentStatuses = map[string]bool{
	string(loanDomain.EmploymentEmployed):     true,
	string(loanDomain.EmploymentSelfEmployed): true,
	string(loanDomain.EmploymentUnemployed):   true,
}

func (in *SubmitInput) validate() error {
	switch {
	case in.ApplicantFirstName == "" || in.ApplicantLastName == "":
		return loanDomain.Invalid("applicant_name", "is required")
	case in.ApplicantEmail == "":
		return loanDomain.Invalid("applicant_email", "is required")
	case !employmentStatuses[in.EmploymentStatus]:
		return loanDomain.Invalid("employment_status", "must be employed, self_employed, or unemployed")
	case in.MonthlyIncome < 0:
		return loanDomain.Invalid("monthly_income", "must not be negative")
	case in.LoanAmount <= 0:
		return loanDomain.Invalid("loan_amount", "must be greater than zero")
	case in.DownPayment < 0:
		return loanDomain.Invalid("down_payment", "must not be negative")
	case in.DownPayment >= in.LoanAmount:
		return loanDomain.Invalid("down_payment", "cannot reach or exceed the loan amount")
	case in.AssetID == 0:
		return loanDomain.Invalid("asset_id", "is required")
	case in.FinancingTermID == 0:
		return loanDomain.Invalid("financing_term_id", "is required")
	}
	return nil
}

// Submit creates a pending application, reserves the asset, computes the
// projected totals, and writes the initial risk assessment — all in one
// transaction with the audit entry.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*LoanDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		term, err := r.Terms.GetByID(ctx, in.FinancingTermID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.Invalid("financing_term_id", "does not exist")
			}
			return err
		}

		a, err := r.Assets.GetByID(ctx, in.AssetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return assetDomain.ErrNotFound
			}
			return err
		}
		if !a.Available() {
			return fmt.Errorf("%w: asset %d is %s", assetDomain.ErrUnavailable, a.ID, a.Status)
		}

		principal := decimal.NewFromFloat(in.LoanAmount).
			Sub(decimal.NewFromFloat(in.DownPayment)).Round(2).InexactFloat64()

		// Projection only: entries are discarded here and regenerated at
		// approval time from the approval date.
		_, totals, err := loanDomain.BuildSchedule(principal, term.InterestRate, term.TermYears, time.Now().UTC())
		if err != nil {
			return err
		}

		assetExpected := a.Version
		a.Status = assetDomain.StatusReserved
		if err := r.Assets.UpdateWithVersion(ctx, a, assetExpected); err != nil {
			return err
		}

		l := &loanDomain.LoanApplication{
			LoanID:             id.NewID32(),
			ApplicantFirstName: in.ApplicantFirstName,
			ApplicantLastName:  in.ApplicantLastName,
			ApplicantEmail:     in.ApplicantEmail,
			ApplicantPhone:     in.ApplicantPhone,
			EmploymentStatus:   loanDomain.EmploymentStatus(in.EmploymentStatus),
			MonthlyIncome:      in.MonthlyIncome,
			CreditScore:        in.CreditScore,
			AssetID:            a.ID,
			FinancingTermID:    term.ID,
			TermYears:          term.TermYears,
			InterestRate:       term.InterestRate,
			LoanAmount:         in.LoanAmount,
			DownPayment:        in.DownPayment,
			Principal:          principal,
			MonthlyPayment:     totals.MonthlyPayment,
			TotalAmount:        totals.TotalAmount,
			Status:             loanDomain.StatusPending,
			SubmittedBy:        in.ActorID,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		loanExpected := l.Version
		if _, err := riskuc.Evaluate(ctx, r, l, u.riskParams, "initial assessment"); err != nil {
			return err
		}
		if err := r.Loans.UpdateWithVersion(ctx, l, loanExpected); err != nil {
			return err
		}

		entry, err := auditDomain.NewEntry(in.ActorID, "loans", l.ID, auditDomain.ActionLoanSubmitted,
			fmt.Sprintf("loan %s submitted for asset %d", l.LoanID, a.ID), nil, l)
		if err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
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

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
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

func (u *Usecase) Schedule(ctx context.Context, loanID string) ([]EntryDTO, error) {
	var out []EntryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		entries, err := r.Loans.EntriesByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		out = make([]EntryDTO, 0, len(entries))
		for i := range entries {
			out = append(out, toEntryDTO(&entries[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
