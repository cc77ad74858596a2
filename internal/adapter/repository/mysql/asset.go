package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	assetDomain "motofin-ledger/internal/domain/asset"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) Create(ctx context.Context, a *assetDomain.Asset) error {
	if a.Version == 0 {
		a.Version = 1
	}
	a.LastModifiedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssetRepository) GetByID(ctx context.Context, id uint64) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *AssetRepository) List(ctx context.Context) ([]assetDomain.Asset, error) {
	var out []assetDomain.Asset
	res := r.db.WithContext(ctx).Order("id").Find(&out)
	return out, res.Error
}

func (r *AssetRepository) UpdateWithVersion(ctx context.Context, a *assetDomain.Asset, expectedVersion uint64) error {
	a.Bump(expectedVersion)
	db := r.db.WithContext(ctx)
	res := db.Model(&assetDomain.Asset{}).
		Where("id = ? AND version = ?", a.ID, expectedVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(a)
	return finishCAS(db, "asset", &assetDomain.Asset{}, a.ID, expectedVersion, res)
}

func (r *AssetRepository) Delete(ctx context.Context, id uint64, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&assetDomain.Asset{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	res := db.Delete(&assetDomain.Asset{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AssetRepository) Reinstate(ctx context.Context, a *assetDomain.Asset) error {
	db := r.db.WithContext(ctx)
	if err := db.Unscoped().Where("id = ?", a.ID).Delete(&assetDomain.Asset{}).Error; err != nil {
		return err
	}
	return db.Create(a).Error
}
