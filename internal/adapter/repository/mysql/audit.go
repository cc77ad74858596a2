package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	auditDomain "motofin-ledger/internal/domain/audit"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByRecord(ctx context.Context, module string, recordID uint64) ([]auditDomain.Entry, error) {
	var out []auditDomain.Entry
	res := r.db.WithContext(ctx).
		Where("module = ? AND record_id = ?", module, recordID).
		Order("id").Find(&out)
	return out, res.Error
}

func (r *AuditRepository) CountSince(ctx context.Context, since time.Time) ([]auditDomain.MutationCount, error) {
	var out []auditDomain.MutationCount
	res := r.db.WithContext(ctx).Model(&auditDomain.Entry{}).
		Select("module, record_id, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("module, record_id").
		Scan(&out)
	return out, res.Error
}
