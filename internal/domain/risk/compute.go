package risk

import "github.com/shopspring/decimal"

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Params carries the externally configured scoring knobs. Thresholds are
// inputs, not constants: low is every score below LowThreshold, high is every
// score above HighThreshold.
type Params struct {
	BaseScore     int
	LowThreshold  int
	HighThreshold int
}

func DefaultParams() Params {
	return Params{BaseScore: 30, LowThreshold: 40, HighThreshold: 70}
}

// employmentPenalties is the closed penalty set for the supported categories.
var employmentPenalties = map[string]int{
	"employed":      0,
	"self_employed": 5,
	"unemployed":    10,
}

// Input is the full snapshot a score is computed from.
type Input struct {
	MissedPayments int
	LoanAmount     float64
	MonthlyPayment float64
	MonthlyIncome  float64
	CreditScore    int
	Employment     string
}

// Computation holds the score, its level, and every intermediate factor so an
// assessment row can retain the exact inputs it was derived from.
type Computation struct {
	Score             int
	Level             Level
	MissedPayments    int
	EmploymentPenalty int
	IncomeFactor      float64
	CreditFactor      float64
	DebtToIncomeRatio float64
}

// Compute is a pure function:
//
//	score = base + missed*15
//	      + clamp(loanAmount/max(income,1) * 10, 0, 30)
//	      - clamp(creditScore/20, 0, 25)
//	      + employmentPenalty
//
// clamped to [0,100].
func Compute(in Input, p Params) Computation {
	two := int32(2)
	var incomeFactor, dti decimal.Decimal
	income := decimal.NewFromFloat(in.MonthlyIncome)
	if !income.IsPositive() {
		incomeFactor = decimal.NewFromInt(30)
		dti = decimal.NewFromInt(100)
	} else {
		ratio := decimal.NewFromFloat(in.LoanAmount).Div(income)
		incomeFactor = clamp(ratio.Mul(decimal.NewFromInt(10)), 0, 30).Round(two)
		dti = clampUpper(decimal.NewFromFloat(in.MonthlyPayment).Div(income).Mul(decimal.NewFromInt(100)), decimal.NewFromFloat(999.99)).Round(two)
	}

	creditFactor := clamp(decimal.NewFromInt(int64(in.CreditScore)).Div(decimal.NewFromInt(20)), 0, 25).Round(two)
	penalty := employmentPenalties[in.Employment]

	raw := decimal.NewFromInt(int64(p.BaseScore)).
		Add(decimal.NewFromInt(int64(in.MissedPayments * 15))).
		Add(incomeFactor).
		Sub(creditFactor).
		Add(decimal.NewFromInt(int64(penalty)))

	score := int(raw.Round(0).IntPart())
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Computation{
		Score:             score,
		Level:             LevelFor(score, p),
		MissedPayments:    in.MissedPayments,
		EmploymentPenalty: penalty,
		IncomeFactor:      incomeFactor.InexactFloat64(),
		CreditFactor:      creditFactor.InexactFloat64(),
		DebtToIncomeRatio: dti.InexactFloat64(),
	}
}

// LevelFor maps a score onto the configured bands: low < LowThreshold,
// medium in [LowThreshold, HighThreshold], high above.
func LevelFor(score int, p Params) Level {
	switch {
	case score < p.LowThreshold:
		return LevelLow
	case score <= p.HighThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func clamp(d decimal.Decimal, lo, hi int64) decimal.Decimal {
	if d.LessThan(decimal.NewFromInt(lo)) {
		return decimal.NewFromInt(lo)
	}
	if d.GreaterThan(decimal.NewFromInt(hi)) {
		return decimal.NewFromInt(hi)
	}
	return d
}

func clampUpper(d, hi decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
