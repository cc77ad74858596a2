package financing

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("financing term not found")

// Term is a catalog row (duration + annual rate). The catalog CRUD lives with
// an external collaborator; the ledger reads terms at submission and the
// consistency checker verifies referenced terms still exist.
type Term struct {
	ID           uint64  `gorm:"primaryKey;column:id" json:"id"`
	TermYears    int     `gorm:"not null;uniqueIndex:ux_terms_years_rate,priority:1" json:"term_years"`
	InterestRate float64 `gorm:"type:decimal(5,2);uniqueIndex:ux_terms_years_rate,priority:2" json:"interest_rate"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Term) TableName() string { return "financing_terms" }
