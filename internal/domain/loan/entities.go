package loan

import (
	"time"

	"gorm.io/gorm"

	"motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/domain/store"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

// LoanApplication is the ledger's root aggregate: a financing request moving
// from submission through payoff. It is never hard-deleted; terminal disposal
// goes through the archive.
type LoanApplication struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"id"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`

	ApplicantFirstName string           `gorm:"size:100" json:"applicant_first_name"`
	ApplicantLastName  string           `gorm:"size:100" json:"applicant_last_name"`
	ApplicantEmail     string           `gorm:"size:254" json:"applicant_email"`
	ApplicantPhone     string           `gorm:"size:32" json:"applicant_phone"`
	EmploymentStatus   EmploymentStatus `gorm:"size:20;default:'employed'" json:"employment_status"`
	MonthlyIncome      float64          `gorm:"type:decimal(12,2)" json:"monthly_income"`
	CreditScore        int              `gorm:"default:650" json:"credit_score"`

	AssetID         uint64 `gorm:"index:idx_loans_asset" json:"asset_id"`
	FinancingTermID uint64 `gorm:"index" json:"financing_term_id"`
	TermYears       int    `json:"term_years"`
	// Captured annual rate percentage from the financing term (e.g. 10.5).
	InterestRate float64 `gorm:"type:decimal(5,2)" json:"interest_rate"`

	LoanAmount     float64 `gorm:"type:decimal(12,2)" json:"loan_amount"`
	DownPayment    float64 `gorm:"type:decimal(12,2)" json:"down_payment"`
	Principal      float64 `gorm:"type:decimal(12,2)" json:"principal"`
	MonthlyPayment float64 `gorm:"type:decimal(12,2)" json:"monthly_payment"`
	TotalAmount    float64 `gorm:"type:decimal(12,2)" json:"total_amount"`

	Status    Status     `gorm:"size:20;default:'pending'" json:"status"`
	RiskScore int        `json:"risk_score"`
	RiskLevel risk.Level `gorm:"size:10" json:"risk_level"`

	store.Versioned

	SubmittedBy string         `gorm:"size:32" json:"submitted_by"`
	SubmittedAt time.Time      `gorm:"autoCreateTime" json:"submitted_at"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	ActivatedAt *time.Time     `json:"activated_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy   string         `gorm:"size:32" json:"-"`
}

func (LoanApplication) TableName() string { return "loans" }

func (l *LoanApplication) ApplicantFullName() string {
	return l.ApplicantFirstName + " " + l.ApplicantLastName
}

type EntryStatus string

const (
	EntryPending EntryStatus = "pending"
	EntryPaid    EntryStatus = "paid"
	EntryOverdue EntryStatus = "overdue"
)

// ScheduleEntry is one installment of a loan's payment schedule. Entries are
// created as a batch when the loan is approved and are never reordered.
type ScheduleEntry struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"id"`
	LoanID   uint64 `gorm:"not null;uniqueIndex:ux_schedule_loan_seq,priority:1" json:"loan_id"`
	Sequence int    `gorm:"not null;uniqueIndex:ux_schedule_loan_seq,priority:2" json:"sequence"`

	DueDate         time.Time   `gorm:"type:date;not null" json:"due_date"`
	AmountDue       float64     `gorm:"type:decimal(12,2)" json:"amount_due"`
	PrincipalAmount float64     `gorm:"type:decimal(12,2)" json:"principal_amount"`
	InterestAmount  float64     `gorm:"type:decimal(12,2)" json:"interest_amount"`
	AmountPaid      *float64    `gorm:"type:decimal(12,2)" json:"amount_paid,omitempty"`
	PaidDate        *time.Time  `json:"paid_date,omitempty"`
	Status          EntryStatus `gorm:"size:10;default:'pending'" json:"status"`

	store.Versioned

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ScheduleEntry) TableName() string { return "payment_schedule_entries" }

// Overdue reports whether the entry should carry EntryOverdue as of reference.
func (e *ScheduleEntry) Overdue(reference time.Time) bool {
	return e.PaidDate == nil && e.DueDate.Before(truncateToDay(reference))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
