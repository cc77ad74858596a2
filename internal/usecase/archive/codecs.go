package archive

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
	loanDomain "motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/store"
	"motofin-ledger/internal/domain/uow"
)

// loanSnapshot bundles the loan with the schedule it owns so a restore brings
// both back together.
type loanSnapshot struct {
	Loan    loanDomain.LoanApplication `json:"loan"`
	Entries []loanDomain.ScheduleEntry `json:"entries"`
}

type loanCodec struct{}

func (loanCodec) capture(ctx context.Context, r uow.Repos, recordID uint64) (string, error) {
	l, err := r.Loans.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", loanDomain.ErrNotFound
		}
		return "", err
	}
	entries, err := r.Loans.EntriesByLoanID(ctx, recordID)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(loanSnapshot{Loan: *l, Entries: entries})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// remove soft-deletes the loan and its schedule, and settles the asset: an
// active loan leaving the ledger means the unit was repossessed, an earlier
// stage releases the reservation.
func (loanCodec) remove(ctx context.Context, r uow.Repos, recordID uint64, actorID string) error {
	l, err := r.Loans.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	a, err := r.Assets.GetByID(ctx, l.AssetID)
	if err == nil {
		var next assetDomain.Status
		switch {
		case l.Status == loanDomain.StatusActive && a.Status == assetDomain.StatusSold:
			next = assetDomain.StatusRepossessed
		case a.Status == assetDomain.StatusReserved:
			next = assetDomain.StatusAvailable
		}
		if next != "" {
			expected := a.Version
			a.Status = next
			if err := r.Assets.UpdateWithVersion(ctx, a, expected); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.Loans.DeleteEntriesByLoanID(ctx, recordID); err != nil {
		return err
	}
	return r.Loans.Delete(ctx, recordID, actorID)
}

func (loanCodec) restore(ctx context.Context, r uow.Repos, snapshot string) (uint64, error) {
	var snap loanSnapshot
	if err := json.Unmarshal([]byte(snapshot), &snap); err != nil {
		return 0, err
	}
	freshVersion(&snap.Loan.Versioned)
	snap.Loan.DeletedAt = gorm.DeletedAt{}
	snap.Loan.DeletedBy = ""
	for i := range snap.Entries {
		freshVersion(&snap.Entries[i].Versioned)
		snap.Entries[i].DeletedAt = gorm.DeletedAt{}
	}
	if err := r.Loans.Reinstate(ctx, &snap.Loan, snap.Entries); err != nil {
		return 0, err
	}
	return snap.Loan.ID, nil
}

type assetCodec struct{}

func (assetCodec) capture(ctx context.Context, r uow.Repos, recordID uint64) (string, error) {
	a, err := r.Assets.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", assetDomain.ErrNotFound
		}
		return "", err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (assetCodec) remove(ctx context.Context, r uow.Repos, recordID uint64, actorID string) error {
	return r.Assets.Delete(ctx, recordID, actorID)
}

func (assetCodec) restore(ctx context.Context, r uow.Repos, snapshot string) (uint64, error) {
	var a assetDomain.Asset
	if err := json.Unmarshal([]byte(snapshot), &a); err != nil {
		return 0, err
	}
	freshVersion(&a.Versioned)
	a.DeletedAt = gorm.DeletedAt{}
	a.DeletedBy = ""
	if err := r.Assets.Reinstate(ctx, &a); err != nil {
		return 0, err
	}
	return a.ID, nil
}

// freshVersion resets the version lineage: a restored record starts over at
// version 1 rather than resuming the archived counter.
func freshVersion(v *store.Versioned) {
	v.Version = 1
	v.LastModifiedAt = time.Now().UTC()
}
