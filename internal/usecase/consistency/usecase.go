package consistency

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
	financingDomain "motofin-ledger/internal/domain/financing"
	loanDomain "motofin-ledger/internal/domain/loan"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one detected invariant violation. Findings are data for operator
// action; the checker never raises them as errors or blocks traffic.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	LoanIDs  []uint64 `json:"loan_ids,omitempty"`
	RecordID uint64   `json:"record_id,omitempty"`
}

type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

func (r *Report) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
		return
	}
	r.Warnings = append(r.Warnings, f)
}

// Checker verifies cross-entity invariants with read-only queries. It holds
// no locks and is safe to run against live mutation traffic.
type Checker struct {
	loans  loanDomain.Repository
	assets assetDomain.Repository
	terms  financingDomain.Repository
}

func NewChecker(loans loanDomain.Repository, assets assetDomain.Repository, terms financingDomain.Repository) *Checker {
	return &Checker{loans: loans, assets: assets, terms: terms}
}

// CheckLoan verifies one loan plus the asset-sharing invariant around it.
func (c *Checker) CheckLoan(ctx context.Context, loanID string) (*Report, error) {
	l, err := c.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrNotFound
		}
		return nil, err
	}

	report := &Report{}
	if err := c.checkLoan(ctx, l, report); err != nil {
		return nil, err
	}

	active, err := c.loans.ListByStatus(ctx, loanDomain.StatusActive)
	if err != nil {
		return nil, err
	}
	checkAssetSharing(filterByAsset(active, l.AssetID), report)
	return report, nil
}

// CheckAll sweeps every loan and the global asset invariants. The sweep is
// interruptible between records: ctx cancellation stops it cleanly (nothing
// is mutated, so stopping midway is always safe).
func (c *Checker) CheckAll(ctx context.Context) (*Report, error) {
	report := &Report{}

	loans, err := c.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range loans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.checkLoan(ctx, &loans[i], report); err != nil {
			return nil, err
		}
	}

	active := make([]loanDomain.LoanApplication, 0, len(loans))
	for i := range loans {
		if loans[i].Status == loanDomain.StatusActive {
			active = append(active, loans[i])
		}
	}
	checkAssetSharing(active, report)

	assets, err := c.assets.List(ctx)
	if err != nil {
		return nil, err
	}
	checkDuplicateChassis(assets, report)

	return report, nil
}

func (c *Checker) checkLoan(ctx context.Context, l *loanDomain.LoanApplication, report *Report) error {
	entries, err := c.loans.EntriesByLoanID(ctx, l.ID)
	if err != nil {
		return err
	}

	scheduled := l.Status == loanDomain.StatusApproved ||
		l.Status == loanDomain.StatusActive ||
		l.Status == loanDomain.StatusCompleted

	if scheduled {
		dueSum := decimal.Zero
		paidSum := decimal.Zero
		unpaid := 0
		overdue := 0
		for i := range entries {
			dueSum = dueSum.Add(decimal.NewFromFloat(entries[i].AmountDue))
			if entries[i].AmountPaid != nil {
				paidSum = paidSum.Add(decimal.NewFromFloat(*entries[i].AmountPaid))
			}
			if entries[i].Status != loanDomain.EntryPaid {
				unpaid++
			}
			if entries[i].Status == loanDomain.EntryOverdue {
				overdue++
			}
		}

		total := decimal.NewFromFloat(l.TotalAmount)
		if !dueSum.Round(2).Equal(total.Round(2)) {
			report.add(Finding{
				Severity: SeverityError,
				Code:     "schedule_total_mismatch",
				Message:  fmt.Sprintf("loan %s: schedule sums to %s, loan total is %s", l.LoanID, dueSum.StringFixed(2), total.StringFixed(2)),
				LoanIDs:  []uint64{l.ID},
			})
		}
		if paidSum.GreaterThan(total) {
			report.add(Finding{
				Severity: SeverityError,
				Code:     "overpayment",
				Message:  fmt.Sprintf("loan %s: %s paid against a total of %s", l.LoanID, paidSum.StringFixed(2), total.StringFixed(2)),
				LoanIDs:  []uint64{l.ID},
			})
		}
		if l.Status == loanDomain.StatusCompleted && unpaid > 0 {
			report.add(Finding{
				Severity: SeverityError,
				Code:     "completed_unpaid_entries",
				Message:  fmt.Sprintf("loan %s is completed with %d unpaid entries", l.LoanID, unpaid),
				LoanIDs:  []uint64{l.ID},
			})
		}
		if l.Status == loanDomain.StatusActive && overdue > 0 {
			report.add(Finding{
				Severity: SeverityWarning,
				Code:     "overdue_entries",
				Message:  fmt.Sprintf("loan %s has %d overdue entries", l.LoanID, overdue),
				LoanIDs:  []uint64{l.ID},
			})
		}
	}

	if _, err := c.assets.GetByID(ctx, l.AssetID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		report.add(Finding{
			Severity: SeverityError,
			Code:     "orphan_asset",
			Message:  fmt.Sprintf("loan %s references missing asset %d", l.LoanID, l.AssetID),
			LoanIDs:  []uint64{l.ID},
			RecordID: l.AssetID,
		})
	}
	if _, err := c.terms.GetByID(ctx, l.FinancingTermID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		report.add(Finding{
			Severity: SeverityError,
			Code:     "orphan_financing_term",
			Message:  fmt.Sprintf("loan %s references missing financing term %d", l.LoanID, l.FinancingTermID),
			LoanIDs:  []uint64{l.ID},
			RecordID: l.FinancingTermID,
		})
	}
	return nil
}

// checkAssetSharing flags assets financed by more than one active loan. One
// finding per asset, naming every involved loan.
func checkAssetSharing(active []loanDomain.LoanApplication, report *Report) {
	byAsset := make(map[uint64][]uint64)
	for i := range active {
		byAsset[active[i].AssetID] = append(byAsset[active[i].AssetID], active[i].ID)
	}
	assetIDs := make([]uint64, 0, len(byAsset))
	for assetID := range byAsset {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i] < assetIDs[j] })

	for _, assetID := range assetIDs {
		loanIDs := byAsset[assetID]
		if len(loanIDs) < 2 {
			continue
		}
		sort.Slice(loanIDs, func(i, j int) bool { return loanIDs[i] < loanIDs[j] })
		report.add(Finding{
			Severity: SeverityError,
			Code:     "asset_conflict",
			Message:  fmt.Sprintf("asset %d is financed by %d active loans", assetID, len(loanIDs)),
			LoanIDs:  loanIDs,
			RecordID: assetID,
		})
	}
}

func checkDuplicateChassis(assets []assetDomain.Asset, report *Report) {
	seen := make(map[string][]uint64)
	for i := range assets {
		if assets[i].ChassisNumber == "" {
			continue
		}
		seen[assets[i].ChassisNumber] = append(seen[assets[i].ChassisNumber], assets[i].ID)
	}
	chassis := make([]string, 0, len(seen))
	for k := range seen {
		chassis = append(chassis, k)
	}
	sort.Strings(chassis)

	for _, k := range chassis {
		ids := seen[k]
		if len(ids) < 2 {
			continue
		}
		report.add(Finding{
			Severity: SeverityError,
			Code:     "duplicate_chassis",
			Message:  fmt.Sprintf("chassis number %q appears on %d assets", k, len(ids)),
			RecordID: ids[0],
		})
	}
}

func filterByAsset(loans []loanDomain.LoanApplication, assetID uint64) []loanDomain.LoanApplication {
	out := loans[:0:0]
	for i := range loans {
		if loans[i].AssetID == assetID {
			out = append(out, loans[i])
		}
	}
	return out
}
