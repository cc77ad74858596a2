package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	archiveDomain "motofin-ledger/internal/domain/archive"
)

type ArchiveRepository struct{ db *gorm.DB }

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository { return &ArchiveRepository{db: db} }

func (r *ArchiveRepository) Create(ctx context.Context, e *archiveDomain.Entry) error {
	if e.Version == 0 {
		e.Version = 1
	}
	e.LastModifiedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ArchiveRepository) GetByID(ctx context.Context, id uint64) (*archiveDomain.Entry, error) {
	var out archiveDomain.Entry
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *ArchiveRepository) List(ctx context.Context) ([]archiveDomain.Entry, error) {
	var out []archiveDomain.Entry
	res := r.db.WithContext(ctx).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *ArchiveRepository) ListByModule(ctx context.Context, module archiveDomain.Module) ([]archiveDomain.Entry, error) {
	var out []archiveDomain.Entry
	res := r.db.WithContext(ctx).Where("module = ?", module).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *ArchiveRepository) UpdateWithVersion(ctx context.Context, e *archiveDomain.Entry, expectedVersion uint64) error {
	e.Bump(expectedVersion)
	db := r.db.WithContext(ctx)
	res := db.Model(&archiveDomain.Entry{}).
		Where("id = ? AND version = ?", e.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(e)
	return finishCAS(db, "archive entry", &archiveDomain.Entry{}, e.ID, expectedVersion, res)
}
