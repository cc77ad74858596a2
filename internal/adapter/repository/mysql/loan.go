package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	loanDomain "motofin-ledger/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanApplication) error {
	if l.Version == 0 {
		l.Version = 1
	}
	l.LastModifiedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.LoanApplication, error) {
	var out loanDomain.LoanApplication
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.LoanApplication, error) {
	var out loanDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.LoanApplication, error) {
	var out []loanDomain.LoanApplication
	res := r.db.WithContext(ctx).Order("id").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loanDomain.Status) ([]loanDomain.LoanApplication, error) {
	var out []loanDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&out)
	return out, res.Error
}

// UpdateWithVersion writes the full mutable state of l, guarded by the
// version the caller read. Exactly one of two concurrent writers with the
// same expected version succeeds.
func (r *LoanRepository) UpdateWithVersion(ctx context.Context, l *loanDomain.LoanApplication, expectedVersion uint64) error {
	l.Bump(expectedVersion)
	db := r.db.WithContext(ctx)
	res := db.Model(&loanDomain.LoanApplication{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Select("*").Omit("id", "loan_id", "created_at", "deleted_at").
		Updates(l)
	return finishCAS(db, "loan", &loanDomain.LoanApplication{}, l.ID, expectedVersion, res)
}

func (r *LoanRepository) Delete(ctx context.Context, id uint64, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&loanDomain.LoanApplication{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	res := db.Delete(&loanDomain.LoanApplication{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reinstate rebuilds an archived loan and its schedule from snapshot state.
// Any soft-deleted leftovers are purged first so the original primary key can
// be reused.
func (r *LoanRepository) Reinstate(ctx context.Context, l *loanDomain.LoanApplication, entries []loanDomain.ScheduleEntry) error {
	db := r.db.WithContext(ctx)
	if err := db.Unscoped().Where("id = ?", l.ID).Delete(&loanDomain.LoanApplication{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("loan_id = ?", l.ID).Delete(&loanDomain.ScheduleEntry{}).Error; err != nil {
		return err
	}
	if err := db.Create(l).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return db.Create(&entries).Error
}

func (r *LoanRepository) CreateEntries(ctx context.Context, entries []loanDomain.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].Version == 0 {
			entries[i].Version = 1
		}
		entries[i].LastModifiedAt = now
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *LoanRepository) GetEntry(ctx context.Context, entryID uint64) (*loanDomain.ScheduleEntry, error) {
	var out loanDomain.ScheduleEntry
	res := r.db.WithContext(ctx).First(&out, entryID)
	return &out, res.Error
}

func (r *LoanRepository) EntriesByLoanID(ctx context.Context, loanID uint64) ([]loanDomain.ScheduleEntry, error) {
	var out []loanDomain.ScheduleEntry
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("sequence").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListEntriesDueBefore(ctx context.Context, reference time.Time) ([]loanDomain.ScheduleEntry, error) {
	var out []loanDomain.ScheduleEntry
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", loanDomain.EntryPending, reference).
		Order("loan_id, sequence").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) UpdateEntryWithVersion(ctx context.Context, e *loanDomain.ScheduleEntry, expectedVersion uint64) error {
	e.Bump(expectedVersion)
	db := r.db.WithContext(ctx)
	res := db.Model(&loanDomain.ScheduleEntry{}).
		Where("id = ? AND version = ?", e.ID, expectedVersion).
		Select("*").Omit("id", "loan_id", "sequence", "created_at", "deleted_at").
		Updates(e)
	return finishCAS(db, "schedule entry", &loanDomain.ScheduleEntry{}, e.ID, expectedVersion, res)
}

func (r *LoanRepository) DeleteEntriesByLoanID(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&loanDomain.ScheduleEntry{}).Error
}
