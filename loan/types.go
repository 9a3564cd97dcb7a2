/*
Package loan provides the amortization and solver engine.

PURPOSE:
  Given three of {principal, rate, EMI, tenure} plus optional prepayments,
  variable-rate events and a moratorium, the engine solves for the missing
  quantity, walks the loan forward month by month, and aggregates the
  resulting ledger into financial-year buckets and savings metrics.

KEY CONCEPTS IN THIS FILE (types.go):
  - Mode: which quantity is unknown (SolveForRate / SolveForEMI / SolveForTenure)
  - Terms: everything that shapes the schedule but is not solved for
  - PrepaymentEvent / RateChangeEvent: month-keyed events
  - ScheduleRow: one simulated month, immutable once produced
  - FiscalYearBucket: April-March aggregation of rows
  - Result: the unified output of one calculation

DESIGN PRINCIPLES:
  1. Purity: every calculation is a function of its Request. No hidden state.
  2. Months are 1-indexed from loan start and include moratorium months.
  3. Solvers work in float64 (pow, log, bisection). Every ledger amount
     (schedule rows, fiscal buckets, result totals) is a decimal.Decimal;
     rounding to paise is a boundary concern (see report.Money).

USAGE:
  calc := loan.NewCalculator()
  result, err := calc.Calculate(loan.Request{
      Mode: loan.SolveForEMI{Principal: 1_000_000, AnnualRatePercent: 8, TenureMonths: 120},
      Terms: loan.Terms{
          StartDate:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
          PaymentDay:  5,
          Compounding: loan.CompoundMonthly,
      },
  })

SEE ALSO:
  - calculator.go: orchestration (validate, solve, simulate, aggregate)
  - schedule.go: the amortization loop
  - errors.go: error taxonomy
*/
package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS
// =============================================================================

// CompoundingPeriod is how often nominal annual interest compounds.
type CompoundingPeriod string

const (
	CompoundDaily        CompoundingPeriod = "daily"
	CompoundFortnightly  CompoundingPeriod = "fortnightly"
	CompoundMonthly      CompoundingPeriod = "monthly"
	CompoundQuarterly    CompoundingPeriod = "quarterly"
	CompoundSemiAnnually CompoundingPeriod = "semiAnnually"
	CompoundAnnually     CompoundingPeriod = "annually"
)

// PrepaymentFrequency is the cadence of a prepayment event.
type PrepaymentFrequency string

const (
	PrepayOneTime   PrepaymentFrequency = "oneTime"
	PrepayMonthly   PrepaymentFrequency = "monthly"
	PrepayQuarterly PrepaymentFrequency = "quarterly"
	PrepayAnnually  PrepaymentFrequency = "annually"
)

// interval returns the number of months between recurrences, 0 for one-time.
func (f PrepaymentFrequency) interval() int {
	switch f {
	case PrepayMonthly:
		return 1
	case PrepayQuarterly:
		return 3
	case PrepayAnnually:
		return 12
	default:
		return 0
	}
}

// Valid reports whether f is a known frequency.
func (f PrepaymentFrequency) Valid() bool {
	switch f {
	case PrepayOneTime, PrepayMonthly, PrepayQuarterly, PrepayAnnually:
		return true
	}
	return false
}

// =============================================================================
// EVENTS
// =============================================================================

// PrepaymentEvent is an extra principal payment. Recurring events apply at
// TriggerMonth and then every interval until the loan is paid off.
type PrepaymentEvent struct {
	Amount       float64
	TriggerMonth int
	Frequency    PrepaymentFrequency
}

// Recurring reports whether the event repeats.
func (p PrepaymentEvent) Recurring() bool {
	return p.Frequency.interval() > 0
}

// dueIn reports whether the event fires in the given month.
func (p PrepaymentEvent) dueIn(month int) bool {
	if month < p.TriggerMonth {
		return false
	}
	step := p.Frequency.interval()
	if step == 0 {
		return month == p.TriggerMonth
	}
	return (month-p.TriggerMonth)%step == 0
}

// RateChangeEvent switches the nominal annual rate from EffectiveMonth on.
type RateChangeEvent struct {
	EffectiveMonth       int
	NewAnnualRatePercent float64
}

// =============================================================================
// SOLVE MODES - exactly one quantity is unknown
// =============================================================================

// Mode selects the unknown variable. It is sealed: only the three solve
// modes below implement it.
type Mode interface {
	ModeName() string
	principal() float64
}

// SolveForRate derives the interest rate from principal, EMI and tenure.
type SolveForRate struct {
	Principal    float64
	EMI          float64
	TenureMonths int
}

// SolveForEMI derives the EMI from principal, rate and tenure.
type SolveForEMI struct {
	Principal         float64
	AnnualRatePercent float64
	TenureMonths      int
}

// SolveForTenure derives the tenure from principal, rate and EMI.
type SolveForTenure struct {
	Principal         float64
	AnnualRatePercent float64
	EMI               float64
}

func (SolveForRate) ModeName() string   { return "rate" }
func (SolveForEMI) ModeName() string    { return "emi" }
func (SolveForTenure) ModeName() string { return "tenure" }

func (m SolveForRate) principal() float64   { return m.Principal }
func (m SolveForEMI) principal() float64    { return m.Principal }
func (m SolveForTenure) principal() float64 { return m.Principal }

// =============================================================================
// REQUEST
// =============================================================================

// Terms holds the inputs that shape the schedule but are never solved for.
type Terms struct {
	StartDate        time.Time
	PaymentDay       int
	Compounding      CompoundingPeriod
	MoratoriumMonths int
	Prepayments      []PrepaymentEvent
	VariableRates    []RateChangeEvent
}

// Request is one calculation call.
type Request struct {
	Mode  Mode
	Terms Terms

	// FieldErrors carries field-level validation failures detected before
	// the values reached the engine (e.g. unparsable numbers). Any non-empty
	// entry fails the calculation with a ValidationError.
	FieldErrors map[string]string
}

// =============================================================================
// OUTPUT
// =============================================================================

// ScheduleRow is one simulated month.
// Invariant: BeginningBalance - Principal - Prepayment == EndingBalance.
type ScheduleRow struct {
	Month               int
	Date                time.Time
	BeginningBalance    decimal.Decimal
	EMI                 decimal.Decimal
	Principal           decimal.Decimal
	Interest            decimal.Decimal
	Prepayment          decimal.Decimal
	EndingBalance       decimal.Decimal
	CumulativeInterest  decimal.Decimal
	CumulativePrincipal decimal.Decimal
	AnnualRatePercent   float64

	// Moratorium rows pay nothing; their interest capitalizes.
	Moratorium bool
}

// FiscalYearBucket aggregates the rows falling in one April-March year.
type FiscalYearBucket struct {
	Label          string
	Start          time.Time
	End            time.Time
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	Prepayment     decimal.Decimal
	ClosingBalance decimal.Decimal
	Rows           []ScheduleRow
}

// Result is the output of one calculation. It is never mutated after
// construction; a new calculation produces a new Result.
type Result struct {
	Mode      string
	Principal decimal.Decimal

	CalculatedRatePercent  float64
	CalculatedEMI          decimal.Decimal
	CalculatedTenureMonths int

	MoratoriumMonths    int
	CapitalizedInterest decimal.Decimal
	RepaymentMonths     int
	TotalInterest       decimal.Decimal
	TotalPayment        decimal.Decimal
	BaselineInterest    decimal.Decimal
	MonthlySchedule     []ScheduleRow
	FinancialYears      []FiscalYearBucket
	LoanEndDate         time.Time
	InterestSaved       decimal.Decimal
	TenureReducedMonths int

	// Notices are informational, e.g. the achievable tenure when it differs
	// from the requested one.
	Notices []string
}
