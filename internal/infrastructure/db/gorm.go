package db

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"motofin-ledger/internal/domain/archive"
	"motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/financing"
	"motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/risk"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate brings the schema up for every ledger table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&financing.Term{},
		&asset.Asset{},
		&loan.LoanApplication{},
		&loan.ScheduleEntry{},
		&risk.Assessment{},
		&audit.Entry{},
		&archive.Entry{},
	)
}
