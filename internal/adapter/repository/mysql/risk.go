package mysql

import (
	"context"

	"gorm.io/gorm"

	riskDomain "motofin-ledger/internal/domain/risk"
)

type RiskRepository struct{ db *gorm.DB }

func NewRiskRepository(db *gorm.DB) *RiskRepository { return &RiskRepository{db: db} }

func (r *RiskRepository) Create(ctx context.Context, a *riskDomain.Assessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *RiskRepository) LatestByLoanID(ctx context.Context, loanID uint64) (*riskDomain.Assessment, error) {
	var out riskDomain.Assessment
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).
		Order("id DESC").First(&out)
	return &out, res.Error
}

func (r *RiskRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]riskDomain.Assessment, error) {
	var out []riskDomain.Assessment
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).
		Order("id DESC").Find(&out)
	return out, res.Error
}
