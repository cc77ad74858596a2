package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinTermYears = 1
	MaxTermYears = 7
)

// Totals summarizes a generated schedule. All amounts are rounded to cents.
type Totals struct {
	TotalInterest  float64
	TotalAmount    float64
	MonthlyPayment float64
}

// BuildSchedule derives a simple-interest payment schedule:
//
//	totalInterest  = principal * annualRate * termYears
//	totalAmount    = principal + totalInterest
//	monthlyPayment = round(totalAmount / (termYears*12), 2)
//
// Every entry is due monthlyPayment except the last, which absorbs the
// rounding remainder so the entries sum to totalAmount to the cent. Each
// entry also carries a level principal share with the interest portion as
// the difference; the final entry reconciles both splits. Due dates step one
// calendar month from start.
func BuildSchedule(principal, annualRatePercent float64, termYears int, start time.Time) ([]ScheduleEntry, Totals, error) {
	if principal <= 0 {
		return nil, Totals{}, Invalid("principal", "must be greater than zero")
	}
	if annualRatePercent < 0 {
		return nil, Totals{}, Invalid("interest_rate", "must not be negative")
	}
	if termYears < MinTermYears || termYears > MaxTermYears {
		return nil, Totals{}, Invalid("term_years", "must be between 1 and 7")
	}

	two := int32(2)
	p := decimal.NewFromFloat(principal)
	rate := decimal.NewFromFloat(annualRatePercent).Div(decimal.NewFromInt(100))
	years := decimal.NewFromInt(int64(termYears))
	months := termYears * 12
	monthsDec := decimal.NewFromInt(int64(months))

	totalInterest := p.Mul(rate).Mul(years).Round(two)
	totalAmount := p.Add(totalInterest)
	monthly := totalAmount.Div(monthsDec).Round(two)
	principalShare := p.Div(monthsDec).Round(two)

	entries := make([]ScheduleEntry, 0, months)
	principalPaid := decimal.Zero
	interestPaid := decimal.Zero

	for i := 0; i < months; i++ {
		var due, principalPart, interestPart decimal.Decimal
		if i == months-1 {
			principalPart = p.Sub(principalPaid)
			interestPart = totalInterest.Sub(interestPaid)
			if principalPart.IsNegative() {
				principalPart = decimal.Zero
			}
			if interestPart.IsNegative() {
				interestPart = decimal.Zero
			}
			// Remainder reconciliation: the sum of all entries must equal
			// totalAmount to the cent.
			due = totalAmount.Sub(monthly.Mul(decimal.NewFromInt(int64(months - 1))))
		} else {
			principalPart = principalShare
			if principalPart.GreaterThan(monthly) {
				principalPart = monthly
			}
			interestPart = monthly.Sub(principalPart)
			if interestPart.IsNegative() {
				interestPart = decimal.Zero
				principalPart = monthly
			}
			due = monthly
			principalPaid = principalPaid.Add(principalPart)
			interestPaid = interestPaid.Add(interestPart)
		}

		entries = append(entries, ScheduleEntry{
			Sequence:        i + 1,
			DueDate:         AddMonths(start, i+1),
			AmountDue:       due.InexactFloat64(),
			PrincipalAmount: principalPart.InexactFloat64(),
			InterestAmount:  interestPart.InexactFloat64(),
			Status:          EntryPending,
		})
	}

	totals := Totals{
		TotalInterest:  totalInterest.InexactFloat64(),
		TotalAmount:    totalAmount.InexactFloat64(),
		MonthlyPayment: monthly.InexactFloat64(),
	}
	return entries, totals, nil
}

// AddMonths advances t by n calendar months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.UTC().Date()
	total := int(m) - 1 + n
	year := y + total/12
	month := time.Month(total%12 + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
