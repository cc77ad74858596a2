package risk

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	auditDomain "motofin-ledger/internal/domain/audit"
	loanDomain "motofin-ledger/internal/domain/loan"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/domain/uow"
)

// Evaluate recomputes a loan's risk from its current schedule state, appends
// an immutable assessment row, and folds the denormalized score/level into l.
// The caller persists l under its own version guard so the risk update rides
// in the same compare-and-swap as the triggering mutation.
func Evaluate(ctx context.Context, r uow.Repos, l *loanDomain.LoanApplication, params riskDomain.Params, notes string) (*riskDomain.Assessment, error) {
	entries, err := r.Loans.EntriesByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	missed := 0
	for i := range entries {
		if entries[i].Status == loanDomain.EntryOverdue {
			missed++
		}
	}

	in := riskDomain.Input{
		MissedPayments: missed,
		LoanAmount:     l.Principal,
		MonthlyPayment: l.MonthlyPayment,
		MonthlyIncome:  l.MonthlyIncome,
		CreditScore:    l.CreditScore,
		Employment:     string(l.EmploymentStatus),
	}
	comp := riskDomain.Compute(in, params)

	a := riskDomain.NewAssessment(l.ID, in, params, comp, notes)
	if err := r.Risks.Create(ctx, a); err != nil {
		return nil, err
	}

	l.RiskScore = comp.Score
	l.RiskLevel = comp.Level
	return a, nil
}

type Usecase struct {
	uow    uow.UnitOfWork
	params riskDomain.Params
}

func NewUsecase(tx uow.UnitOfWork, params riskDomain.Params) *Usecase {
	return &Usecase{uow: tx, params: params}
}

type AssessmentDTO struct {
	LoanID            string           `json:"loan_id"`
	Score             int              `json:"score"`
	Level             riskDomain.Level `json:"level"`
	MissedPayments    int              `json:"missed_payments"`
	EmploymentPenalty int              `json:"employment_penalty"`
	IncomeFactor      float64          `json:"income_factor"`
	CreditFactor      float64          `json:"credit_factor"`
	DebtToIncomeRatio float64          `json:"debt_to_income_ratio"`
	CalculatedAt      time.Time        `json:"calculated_at"`
}

// Recompute is the manual recompute entry point. The new score lands on the
// loan in the same transaction as the assessment row and the audit entry.
func (u *Usecase) Recompute(ctx context.Context, actorID, loanID string) (*AssessmentDTO, error) {
	var dto *AssessmentDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrNotFound
			}
			return err
		}
		expected := l.Version

		a, err := Evaluate(ctx, r, l, u.params, "manual recompute")
		if err != nil {
			return err
		}
		if err := r.Loans.UpdateWithVersion(ctx, l, expected); err != nil {
			return err
		}

		entry, err := auditDomain.NewEntry(actorID, "loans", l.ID, auditDomain.ActionRiskRecomputed,
			"risk recomputed manually", nil, map[string]any{"score": a.Score, "level": a.Level})
		if err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}

		dto = &AssessmentDTO{
			LoanID:            l.LoanID,
			Score:             a.Score,
			Level:             a.Level,
			MissedPayments:    a.MissedPayments,
			EmploymentPenalty: a.EmploymentPenalty,
			IncomeFactor:      a.IncomeFactor,
			CreditFactor:      a.CreditFactor,
			DebtToIncomeRatio: a.DebtToIncomeRatio,
			CalculatedAt:      a.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
