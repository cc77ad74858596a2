package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
	auditDomain "motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/authz"
	loanDomain "motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/notify"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/domain/uow"
	riskuc "motofin-ledger/internal/usecase/risk"
)

const entriesModule = "payment_schedule_entries"

type Usecase struct {
	uow        uow.UnitOfWork
	auth       authz.Authorizer
	notifier   notify.Notifier
	riskParams riskDomain.Params
	log        *logrus.Logger
}

func NewUsecase(tx uow.UnitOfWork, auth authz.Authorizer, notifier notify.Notifier, params riskDomain.Params, log *logrus.Logger) *Usecase {
	return &Usecase{uow: tx, auth: auth, notifier: notifier, riskParams: params, log: log}
}

type RecordInput struct {
	ActorID  string     `json:"-"`
	EntryID  uint64     `json:"-"`
	Amount   float64    `json:"amount"`
	Version  uint64     `json:"version"`
	PaidDate *time.Time `json:"paid_date,omitempty"`
}

type RecordDTO struct {
	EntryID    uint64                 `json:"entry_id"`
	Sequence   int                    `json:"sequence"`
	AmountPaid float64                `json:"amount_paid"`
	PaidDate   time.Time              `json:"paid_date"`
	Status     loanDomain.EntryStatus `json:"status"`
	LoanStatus loanDomain.Status      `json:"loan_status"`
	RiskScore  int                    `json:"risk_score"`
	RiskLevel  riskDomain.Level       `json:"risk_level"`
}

// Record settles one schedule entry under the caller's version guard. The
// entry update, any loan transition it causes (first payment activates, full
// settlement completes), the risk recompute, and the audit trail commit as
// one transaction.
func (u *Usecase) Record(ctx context.Context, in RecordInput) (*RecordDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapRecordPayments) {
		return nil, authz.ErrForbidden
	}
	if in.Amount <= 0 {
		return nil, loanDomain.Invalid("amount", "must be greater than zero")
	}

	var dto *RecordDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := r.Loans.GetEntry(ctx, in.EntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loanDomain.ErrEntryNotFound
			}
			return err
		}
		if e.Status == loanDomain.EntryPaid {
			return loanDomain.ErrAlreadyPaid
		}
		if !decimal.NewFromFloat(in.Amount).Round(2).Equal(decimal.NewFromFloat(e.AmountDue).Round(2)) {
			return fmt.Errorf("%w: due %.2f, got %.2f", loanDomain.ErrAmountMismatch, e.AmountDue, in.Amount)
		}

		paidAt := time.Now().UTC()
		if in.PaidDate != nil {
			paidAt = in.PaidDate.UTC()
		}
		amount := in.Amount
		entryBefore := e.Status
		e.Status = loanDomain.EntryPaid
		e.AmountPaid = &amount
		e.PaidDate = &paidAt
		// The caller's version is the guard: of two concurrent writers only
		// one lands, the other gets a conflict and must re-read.
		if err := r.Loans.UpdateEntryWithVersion(ctx, e, in.Version); err != nil {
			return err
		}

		l, err := r.Loans.GetByID(ctx, e.LoanID)
		if err != nil {
			return err
		}
		loanExpected := l.Version
		before := l.Status

		if l.Status == loanDomain.StatusApproved {
			if err := l.Transition(loanDomain.StatusActive); err != nil {
				return err
			}
			l.ActivatedAt = &paidAt
			if err := flipAsset(ctx, r, l.AssetID, assetDomain.StatusReserved, assetDomain.StatusSold); err != nil {
				return err
			}
		}

		entries, err := r.Loans.EntriesByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		settled := true
		for i := range entries {
			if entries[i].Status != loanDomain.EntryPaid {
				settled = false
				break
			}
		}
		if l.Status == loanDomain.StatusActive && settled {
			if err := l.Transition(loanDomain.StatusCompleted); err != nil {
				return err
			}
			l.CompletedAt = &paidAt
		}

		if _, err := riskuc.Evaluate(ctx, r, l, u.riskParams, ""); err != nil {
			return err
		}
		if err := r.Loans.UpdateWithVersion(ctx, l, loanExpected); err != nil {
			return err
		}

		entry, err := auditDomain.NewEntry(in.ActorID, entriesModule, e.ID, auditDomain.ActionPaymentRecorded,
			fmt.Sprintf("installment %d of loan %s paid", e.Sequence, l.LoanID),
			map[string]any{"status": entryBefore}, map[string]any{"status": e.Status, "amount_paid": amount})
		if err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}
		if before != l.Status {
			action := auditDomain.ActionLoanActivated
			if l.Status == loanDomain.StatusCompleted {
				action = auditDomain.ActionLoanCompleted
			}
			trans, err := auditDomain.NewEntry(in.ActorID, "loans", l.ID, action,
				fmt.Sprintf("loan %s moved %s -> %s on payment", l.LoanID, before, l.Status),
				map[string]any{"status": before}, map[string]any{"status": l.Status})
			if err != nil {
				return err
			}
			if err := r.Audits.Create(ctx, trans); err != nil {
				return err
			}
		}

		dto = &RecordDTO{
			EntryID:    e.ID,
			Sequence:   e.Sequence,
			AmountPaid: amount,
			PaidDate:   paidAt,
			Status:     e.Status,
			LoanStatus: l.Status,
			RiskScore:  l.RiskScore,
			RiskLevel:  l.RiskLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
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

type overdueEvent struct {
	loanID  uint64
	entryID uint64
}

// MarkOverdue sweeps pending entries whose due date has passed, flags them
// overdue, recomputes risk for every touched loan, and fires overdue
// notifications after commit. Delivery is not waited on.
func (u *Usecase) MarkOverdue(ctx context.Context, actorID string, asOf time.Time) (int, error) {
	var events []overdueEvent
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		entries, err := r.Loans.ListEntriesDueBefore(ctx, asOf.UTC())
		if err != nil {
			return err
		}

		touched := make(map[uint64]bool)
		for i := range entries {
			e := entries[i]
			// Overdue means the due date is strictly before asOf's calendar
			// day. An installment due today is still on time.
			if !e.Overdue(asOf) {
				continue
			}
			expected := e.Version
			e.Status = loanDomain.EntryOverdue
			if err := r.Loans.UpdateEntryWithVersion(ctx, &e, expected); err != nil {
				return err
			}

			entry, err := auditDomain.NewEntry(actorID, entriesModule, e.ID, auditDomain.ActionPaymentOverdue,
				fmt.Sprintf("installment %d of loan %d overdue since %s", e.Sequence, e.LoanID, e.DueDate.Format("2006-01-02")),
				map[string]any{"status": loanDomain.EntryPending}, map[string]any{"status": loanDomain.EntryOverdue})
			if err != nil {
				return err
			}
			if err := r.Audits.Create(ctx, entry); err != nil {
				return err
			}

			touched[e.LoanID] = true
			events = append(events, overdueEvent{loanID: e.LoanID, entryID: e.ID})
		}

		for loanID := range touched {
			l, err := r.Loans.GetByID(ctx, loanID)
			if err != nil {
				return err
			}
			expected := l.Version
			if _, err := riskuc.Evaluate(ctx, r, l, u.riskParams, "overdue sweep"); err != nil {
				return err
			}
			if err := r.Loans.UpdateWithVersion(ctx, l, expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, ev := range events {
		go u.notifier.PaymentOverdue(context.WithoutCancel(ctx), ev.loanID, ev.entryID)
	}
	if len(events) > 0 && u.log != nil {
		u.log.WithField("count", len(events)).Info("overdue sweep flagged entries")
	}
	return len(events), nil
}
