/*
Package affordability sizes the largest loan a household can carry.

MODEL:
  safe EMI        = 45% of (monthly income - monthly expenses)
  affordable loan = EMI x ((1+r)^N - 1) / (r x (1+r)^N)      r > 0
                  = EMI x N                                  r = 0

  The loan is rounded to the nearest 1,000 and the EMI to the nearest unit.
  An Estimate converts straight into a rate-mode loan request (principal and
  EMI known) so the full schedule can be reviewed.
*/
package affordability

import (
	"math"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/shopspring/decimal"
)

// safeEMIShare is the fraction of disposable income assumed available for an EMI.
var safeEMIShare = decimal.NewFromFloat(0.45)

const (
	MinTenureYears = 1
	MaxTenureYears = 30
)

var thousand = decimal.NewFromInt(1000)

// Input is one household's monthly budget and the loan terms to assume.
type Input struct {
	MonthlyIncome     decimal.Decimal
	MonthlyExpenses   decimal.Decimal
	TenureYears       int
	AnnualRatePercent decimal.Decimal
}

// Estimate is the affordability outcome.
type Estimate struct {
	DisposableIncome  decimal.Decimal
	SafeEMI           decimal.Decimal
	LoanAmount        decimal.Decimal
	TenureMonths      int
	AnnualRatePercent decimal.Decimal
}

// Calculate sizes the affordable loan. Errors are *loan.ValidationError so
// callers classify them the same way as calculation input errors.
func Calculate(in Input) (Estimate, error) {
	if in.AnnualRatePercent.IsNegative() || in.AnnualRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return Estimate{}, &loan.ValidationError{Field: "interestRate", Message: "Rate must be between 0 and 100."}
	}
	if in.TenureYears < MinTenureYears || in.TenureYears > MaxTenureYears {
		return Estimate{}, &loan.ValidationError{Field: "tenureYears", Message: "Tenure must be between 1 and 30 years."}
	}
	if !in.MonthlyIncome.GreaterThan(in.MonthlyExpenses) || in.MonthlyExpenses.IsNegative() {
		return Estimate{}, &loan.ValidationError{
			Field:   "monthlyIncome",
			Message: "Enter valid income & expenses. Income must be greater than expenses.",
		}
	}

	disposable := in.MonthlyIncome.Sub(in.MonthlyExpenses)
	safeEMI := disposable.Mul(safeEMIShare)
	months := in.TenureYears * 12

	// Present value of the EMI stream; the power series stays in float64.
	emi := safeEMI.InexactFloat64()
	r := in.AnnualRatePercent.InexactFloat64() / 12 / 100
	var amount float64
	if r > 0 {
		growth := math.Pow(1+r, float64(months))
		amount = emi * (growth - 1) / (r * growth)
	} else {
		amount = emi * float64(months)
	}

	return Estimate{
		DisposableIncome:  disposable,
		SafeEMI:           safeEMI.Round(0),
		LoanAmount:        decimal.NewFromFloat(amount).Div(thousand).Round(0).Mul(thousand),
		TenureMonths:      months,
		AnnualRatePercent: in.AnnualRatePercent,
	}, nil
}

// RateMode turns the estimate into a solve-for-rate request: the loan amount
// and EMI are known, and the rate that reconciles them is derived.
func (e Estimate) RateMode() loan.SolveForRate {
	return loan.SolveForRate{
		Principal:    e.LoanAmount.InexactFloat64(),
		EMI:          e.SafeEMI.InexactFloat64(),
		TenureMonths: e.TenureMonths,
	}
}
