package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"motofin-ledger/internal/domain/archive"
	"motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/financing"
	"motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/risk"
)

// Open creates an in-memory sqlite DB with the full ledger schema migrated.
// The schema avoids MySQL-only column types, so the domain models migrate
// as-is.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&financing.Term{},
		&asset.Asset{},
		&loan.LoanApplication{},
		&loan.ScheduleEntry{},
		&risk.Assessment{},
		&audit.Entry{},
		&archive.Entry{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
