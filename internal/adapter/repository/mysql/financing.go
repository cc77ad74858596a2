package mysql

import (
	"context"

	"gorm.io/gorm"

	"motofin-ledger/internal/domain/financing"
)

type FinancingTermRepository struct{ db *gorm.DB }

func NewFinancingTermRepository(db *gorm.DB) *FinancingTermRepository {
	return &FinancingTermRepository{db: db}
}

func (r *FinancingTermRepository) Create(ctx context.Context, t *financing.Term) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *FinancingTermRepository) GetByID(ctx context.Context, id uint64) (*financing.Term, error) {
	var out financing.Term
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *FinancingTermRepository) ListActive(ctx context.Context) ([]financing.Term, error) {
	var out []financing.Term
	res := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("term_years, interest_rate").Find(&out)
	return out, res.Error
}
