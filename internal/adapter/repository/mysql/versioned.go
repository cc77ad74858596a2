package mysql

import (
	"errors"

	"gorm.io/gorm"

	"motofin-ledger/internal/domain/store"
)

// finishCAS resolves the outcome of a version-guarded UPDATE
// (... WHERE id = ? AND version = ?). Zero rows affected means either the
// record is gone or another writer won; a re-read tells them apart so the
// caller gets a ConflictError carrying expected vs actual, never a silent
// overwrite.
func finishCAS(db *gorm.DB, entity string, model any, id, expected uint64, res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var current struct{ Version uint64 }
	err := db.Model(model).Select("version").Where("id = ?", id).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gorm.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	return &store.ConflictError{Entity: entity, ID: id, Expected: expected, Actual: current.Version}
}
