package asset

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"motofin-ledger/internal/domain/store"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusSold        Status = "sold"
	StatusRepossessed Status = "repossessed"
)

var (
	ErrNotFound    = errors.New("asset not found")
	ErrUnavailable = errors.New("asset is not available for financing")
)

// Asset is a motorcycle unit. The inventory catalog itself is an external
// collaborator; the ledger consumes existence, chassis uniqueness, and the
// status lifecycle driven by loan transitions.
type Asset struct {
	ID            uint64  `gorm:"primaryKey;column:id" json:"id"`
	ChassisNumber string  `gorm:"size:100;uniqueIndex:ux_assets_chassis" json:"chassis_number"`
	Brand         string  `gorm:"size:100" json:"brand"`
	ModelName     string  `gorm:"size:120" json:"model_name"`
	Year          int     `json:"year"`
	Color         string  `gorm:"size:50" json:"color"`
	PurchasePrice float64 `gorm:"type:decimal(12,2)" json:"purchase_price"`
	Status        Status  `gorm:"size:20;default:'available'" json:"status"`

	store.Versioned

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy string         `gorm:"size:32" json:"-"`
}

func (Asset) TableName() string { return "assets" }

func (a *Asset) Available() bool { return a.Status == StatusAvailable }
