/*
schedule.go - The amortization loop

PURPOSE:
  Walks a loan forward one month at a time and emits a ScheduleRow for every
  month, from the first moratorium month to the installment that clears the
  balance.

PHASES:
  Moratorium (MoratoriumMonths > 0):
    No EMI, no prepayment. Interest on the balance capitalizes: it is added
    to the balance carried into the next month.

  Repayment:
    interest  = balance x monthly rate
    principal = EMI - interest
    If the EMI would clear (or overshoot) the balance, principal is clamped
    to the balance and the final EMI shrinks to balance + interest.
    Prepayments due this month are then applied to what is left.
    Stops once the balance is within BalanceEpsilon of zero, or fails when
    MaxTenureMonths installments were not enough.

RATE CHANGES:
  The rate for a month is the latest RateChangeEvent with EffectiveMonth at
  or before it; before any event, the initial rate applies. Events apply in
  both phases.

PREPAYMENTS:
  The one-time and recurring amounts due in a month are summed; if the sum
  exceeds the balance left after the EMI the schedule fails naming the month.
  Recurring amounts repeat until payoff, so the one exception is the month
  the EMI plus any one-time amount already clears the loan: the recurring
  share there is dropped rather than rejected.

PRECISION:
  Solver outputs (EMI, monthly rate) arrive as float64 and enter the ledger
  once, as decimals. From then on balances, components and running totals
  are decimal.Decimal. Monthly interest is rounded half-even to LedgerPlaces.

SEE ALSO:
  - calculator.go: runs this twice (baseline and final)
  - fiscal.go: aggregates the rows
*/
package loan

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleInput is everything the amortization loop needs. The EMI is fixed;
// rate changes and prepayments alter the tenure, not the installment.
type ScheduleInput struct {
	Principal         float64
	AnnualRatePercent float64
	EMI               float64
	StartDate         time.Time
	PaymentDay        int
	Compounding       CompoundingPeriod
	MoratoriumMonths  int
	Prepayments       []PrepaymentEvent
	VariableRates     []RateChangeEvent
}

// LedgerPlaces is the scale monthly interest is rounded to. It keeps decimal
// digits bounded over long schedules without drifting at display precision.
const LedgerPlaces = 8

// prepaymentTolerance lets a prepayment copied from a rounded balance clear
// the loan exactly.
var prepaymentTolerance = decimal.New(1, -6)

// rateTrack yields the rate in force for increasing months.
type rateTrack struct {
	events      []RateChangeEvent
	next        int
	compounding CompoundingPeriod
	annual      float64
	monthly     float64
	factor      decimal.Decimal
}

func newRateTrack(initial float64, events []RateChangeEvent, c CompoundingPeriod) *rateTrack {
	sorted := make([]RateChangeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveMonth < sorted[j].EffectiveMonth
	})
	rt := &rateTrack{
		events:      sorted,
		compounding: c,
		annual:      initial,
	}
	rt.set(EffectiveMonthlyRate(initial, c))
	return rt
}

func (rt *rateTrack) set(monthly float64) {
	rt.monthly = monthly
	if finite(monthly) {
		rt.factor = decimal.NewFromFloat(monthly)
	}
}

// interest is one month of interest on balance at the current rate.
func (rt *rateTrack) interest(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(rt.factor).RoundBank(LedgerPlaces)
}

// advance applies every event effective at or before month. Months must be
// passed in increasing order.
func (rt *rateTrack) advance(month int) {
	changed := false
	for rt.next < len(rt.events) && rt.events[rt.next].EffectiveMonth <= month {
		rt.annual = rt.events[rt.next].NewAnnualRatePercent
		rt.next++
		changed = true
	}
	if changed {
		rt.set(EffectiveMonthlyRate(rt.annual, rt.compounding))
	}
}

// dueThisMonth splits the prepayments falling in month into one-time and
// recurring totals.
func dueThisMonth(events []PrepaymentEvent, month int) (oneTime, recurring decimal.Decimal) {
	for _, p := range events {
		if !p.dueIn(month) {
			continue
		}
		if p.Recurring() {
			recurring = recurring.Add(decimal.NewFromFloat(p.Amount))
		} else {
			oneTime = oneTime.Add(decimal.NewFromFloat(p.Amount))
		}
	}
	return oneTime, recurring
}

// GenerateSchedule runs the amortization loop. Zero-valued limits fall back
// to DefaultLimits.
func GenerateSchedule(in ScheduleInput, limits Limits) ([]ScheduleRow, error) {
	limits = limits.withDefaults()
	if !finite(in.Principal, in.EMI) {
		return nil, &NumericError{Stage: "schedule input"}
	}

	rates := newRateTrack(in.AnnualRatePercent, in.VariableRates, in.Compounding)
	epsilon := decimal.NewFromFloat(limits.BalanceEpsilon)
	nominalEMI := decimal.NewFromFloat(in.EMI)
	balance := decimal.NewFromFloat(in.Principal)
	rows := make([]ScheduleRow, 0, in.MoratoriumMonths+limits.MaxTenureMonths/2)
	var cumInterest, cumPrincipal decimal.Decimal

	month := 0

	// Moratorium: interest capitalizes, nothing is paid.
	for i := 0; i < in.MoratoriumMonths; i++ {
		month++
		rates.advance(month)
		if !finite(rates.monthly) {
			return nil, &NumericError{Stage: "moratorium", Month: month}
		}
		interest := rates.interest(balance)
		cumInterest = cumInterest.Add(interest)
		rows = append(rows, ScheduleRow{
			Month:               month,
			Date:                PaymentDate(in.StartDate, in.PaymentDay, month),
			BeginningBalance:    balance,
			Interest:            interest,
			EndingBalance:       balance.Add(interest),
			CumulativeInterest:  cumInterest,
			CumulativePrincipal: cumPrincipal,
			AnnualRatePercent:   rates.annual,
			Moratorium:          true,
		})
		balance = balance.Add(interest)
	}

	// Repayment.
	installments := 0
	for balance.GreaterThan(epsilon) && installments < limits.MaxTenureMonths {
		month++
		installments++
		rates.advance(month)
		if !finite(rates.monthly) {
			return nil, &NumericError{Stage: "repayment", Month: month}
		}

		interest := rates.interest(balance)
		principal := nominalEMI.Sub(interest)
		if !principal.IsPositive() {
			return nil, &EmiBelowInterestError{Month: month, EMI: in.EMI, Interest: interest.InexactFloat64()}
		}

		emi := nominalEMI
		if balance.Sub(principal).LessThan(epsilon) {
			principal = balance
			emi = balance.Add(interest)
		}
		afterEMI := balance.Sub(principal)

		oneTime, recurring := dueThisMonth(in.Prepayments, month)
		if oneTime.Sub(afterEMI).GreaterThan(prepaymentTolerance) {
			return nil, &PrepaymentExceedsBalanceError{Month: month, Prepayment: oneTime.InexactFloat64(), Available: afterEMI.InexactFloat64()}
		}
		oneTime = decimal.Min(oneTime, afterEMI)
		left := afterEMI.Sub(oneTime)
		if left.LessThanOrEqual(prepaymentTolerance) {
			oneTime, recurring = afterEMI, decimal.Zero
		} else if recurring.Sub(left).GreaterThan(prepaymentTolerance) {
			total := oneTime.Add(recurring)
			return nil, &PrepaymentExceedsBalanceError{Month: month, Prepayment: total.InexactFloat64(), Available: afterEMI.InexactFloat64()}
		}
		prepayment := decimal.Min(oneTime.Add(recurring), afterEMI)

		ending := afterEMI.Sub(prepayment)
		cumInterest = cumInterest.Add(interest)
		cumPrincipal = cumPrincipal.Add(principal).Add(prepayment)
		rows = append(rows, ScheduleRow{
			Month:               month,
			Date:                PaymentDate(in.StartDate, in.PaymentDay, month),
			BeginningBalance:    balance,
			EMI:                 emi,
			Principal:           principal,
			Interest:            interest,
			Prepayment:          prepayment,
			EndingBalance:       ending,
			CumulativeInterest:  cumInterest,
			CumulativePrincipal: cumPrincipal,
			AnnualRatePercent:   rates.annual,
		})
		balance = ending
	}

	if balance.GreaterThan(epsilon) {
		return nil, &TenureError{
			Months:    float64(installments),
			Limit:     limits.MaxTenureMonths,
			Remaining: balance.InexactFloat64(),
			Simulated: true,
		}
	}
	return rows, nil
}
