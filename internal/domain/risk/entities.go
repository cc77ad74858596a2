package risk

import "time"

// Assessment is a point-in-time risk snapshot for a loan. Rows are immutable
// once written; the newest row is authoritative for display and the full
// history is retained.
type Assessment struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID uint64 `gorm:"not null;index:idx_risk_loan" json:"loan_id"`

	Score             int     `gorm:"not null" json:"score"`
	Level             Level   `gorm:"size:10;not null" json:"level"`
	BaseScore         int     `json:"base_score"`
	CreditScore       int     `json:"credit_score"`
	MissedPayments    int     `json:"missed_payments"`
	EmploymentPenalty int     `json:"employment_penalty"`
	IncomeFactor      float64 `gorm:"type:decimal(6,2)" json:"income_factor"`
	CreditFactor      float64 `gorm:"type:decimal(6,2)" json:"credit_factor"`
	DebtToIncomeRatio float64 `gorm:"type:decimal(6,2)" json:"debt_to_income_ratio"`
	MonthlyIncome     float64 `gorm:"type:decimal(12,2)" json:"monthly_income"`
	LoanAmount        float64 `gorm:"type:decimal(12,2)" json:"loan_amount"`
	Notes             string  `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Assessment) TableName() string { return "risk_assessments" }

// NewAssessment freezes a computation and its inputs into an assessment row.
func NewAssessment(loanID uint64, in Input, p Params, c Computation, notes string) *Assessment {
	return &Assessment{
		LoanID:            loanID,
		Score:             c.Score,
		Level:             c.Level,
		BaseScore:         p.BaseScore,
		CreditScore:       in.CreditScore,
		MissedPayments:    c.MissedPayments,
		EmploymentPenalty: c.EmploymentPenalty,
		IncomeFactor:      c.IncomeFactor,
		CreditFactor:      c.CreditFactor,
		DebtToIncomeRatio: c.DebtToIncomeRatio,
		MonthlyIncome:     in.MonthlyIncome,
		LoanAmount:        in.LoanAmount,
		Notes:             notes,
	}
}
