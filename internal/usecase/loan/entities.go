package loan

import (
	"time"

	loanDomain "motofin-ledger/internal/domain/loan"
	riskDomain "motofin-ledger/internal/domain/risk"
)

type SubmitInput struct {
	ActorID string `json:"-"`

	ApplicantFirstName string  `json:"applicant_first_name"`
	ApplicantLastName  string  `json:"applicant_last_name"`
	ApplicantEmail     string  `json:"applicant_email"`
	ApplicantPhone     string  `json:"applicant_phone"`
	EmploymentStatus   string  `json:"employment_status"`
	MonthlyIncome      float64 `json:"monthly_income"`
	CreditScore        int     `json:"credit_score"`

	AssetID         uint64  `json:"asset_id"`
	FinancingTermID uint64  `json:"financing_term_id"`
	LoanAmount      float64 `json:"loan_amount"`
	DownPayment     float64 `json:"down_payment"`
}

// TransitionInput carries the caller's last-read version. A stale version
// fails with a concurrency conflict instead of applying against newer state.
type TransitionInput struct {
	ActorID string `json:"-"`
	LoanID  string `json:"-"`
	Version uint64 `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

type LoanDTO struct {
	LoanID            string           `json:"loan_id"`
	ApplicantFullName string           `json:"applicant_full_name"`
	EmploymentStatus  string           `json:"employment_status"`
	AssetID           uint64           `json:"asset_id"`
	FinancingTermID   uint64           `json:"financing_term_id"`
	TermYears         int              `json:"term_years"`
	InterestRate      float64          `json:"interest_rate"`
	LoanAmount        float64          `json:"loan_amount"`
	DownPayment       float64          `json:"down_payment"`
	Principal         float64          `json:"principal"`
	MonthlyPayment    float64          `json:"monthly_payment"`
	TotalAmount       float64          `json:"total_amount"`
	Status            loanDomain.Status `json:"status"`
	RiskScore         int              `json:"risk_score"`
	RiskLevel         riskDomain.Level `json:"risk_level"`
	Version           uint64           `json:"version"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	ApprovedAt        *time.Time       `json:"approved_at,omitempty"`
	ActivatedAt       *time.Time       `json:"activated_at,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
}

type EntryDTO struct {
	EntryID    uint64                 `json:"entry_id"`
	Sequence   int                    `json:"sequence"`
	DueDate    time.Time              `json:"due_date"`
	AmountDue  float64                `json:"amount_due"`
	AmountPaid *float64               `json:"amount_paid,omitempty"`
	PaidDate   *time.Time             `json:"paid_date,omitempty"`
	Status     loanDomain.EntryStatus `json:"status"`
	Version    uint64                 `json:"version"`
}

func toDTO(l *loanDomain.LoanApplication) *LoanDTO {
	return &LoanDTO{
		LoanID:            l.LoanID,
		ApplicantFullName: l.ApplicantFullName(),
		EmploymentStatus:  string(l.EmploymentStatus),
		AssetID:           l.AssetID,
		FinancingTermID:   l.FinancingTermID,
		TermYears:         l.TermYears,
		InterestRate:      l.InterestRate,
		LoanAmount:        l.LoanAmount,
		DownPayment:       l.DownPayment,
		Principal:         l.Principal,
		MonthlyPayment:    l.MonthlyPayment,
		TotalAmount:       l.TotalAmount,
		Status:            l.Status,
		RiskScore:         l.RiskScore,
		RiskLevel:         l.RiskLevel,
		Version:           l.Version,
		SubmittedAt:       l.SubmittedAt,
		ApprovedAt:        l.ApprovedAt,
		ActivatedAt:       l.ActivatedAt,
		CompletedAt:       l.CompletedAt,
	}
}

func toEntryDTO(e *loanDomain.ScheduleEntry) EntryDTO {
	return EntryDTO{
		EntryID:    e.ID,
		Sequence:   e.Sequence,
		DueDate:    e.DueDate,
		AmountDue:  e.AmountDue,
		AmountPaid: e.AmountPaid,
		PaidDate:   e.PaidDate,
		Status:     e.Status,
		Version:    e.Version,
	}
}
