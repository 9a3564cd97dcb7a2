package loan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// tenLakhAtEight is 10,00,000 at 8% with the 10-year EMI.
func tenLakhAtEight() loan.ScheduleInput {
	return loan.ScheduleInput{
		Principal:         1_000_000,
		AnnualRatePercent: 8,
		EMI:               loan.SolveEMI(1_000_000, eightPercentMonthly, 120),
		StartDate:         date(2025, 1, 1),
		PaymentDay:        5,
		Compounding:       loan.CompoundMonthly,
	}
}

// num is a float literal as a ledger amount.
func num(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// assertAmount compares a ledger amount to an expected value.
func assertAmount(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !got.Equal(num(want)) {
		assert.Fail(t, fmt.Sprintf("amount mismatch: want %v, got %s", want, got), msgAndArgs...)
	}
}

// assertScheduleInvariants checks the ledger identities every schedule must
// hold. Amounts are decimal, so the identities are exact.
func assertScheduleInvariants(t *testing.T, rows []loan.ScheduleRow) {
	t.Helper()
	require.NotEmpty(t, rows)

	var principalPaid decimal.Decimal
	for i, row := range rows {
		assert.Equal(t, i+1, row.Month, "months are 1-indexed and contiguous")
		assert.False(t, row.EndingBalance.IsNegative(), "month %d", row.Month)
		if row.Moratorium {
			assert.True(t, row.BeginningBalance.Add(row.Interest).Equal(row.EndingBalance), "month %d", row.Month)
		} else {
			assert.True(t, row.BeginningBalance.Sub(row.Principal).Sub(row.Prepayment).Equal(row.EndingBalance), "month %d", row.Month)
		}
		principalPaid = principalPaid.Add(row.Principal).Add(row.Prepayment)
		assert.True(t, principalPaid.Equal(row.CumulativePrincipal), "month %d", row.Month)
		if i > 0 {
			assert.True(t, rows[i-1].EndingBalance.Equal(row.BeginningBalance), "month %d", row.Month)
			assert.True(t, row.Date.After(rows[i-1].Date), "month %d", row.Month)
		}
	}
	assert.True(t, rows[len(rows)-1].EndingBalance.LessThan(num(0.01)), "final balance")
}

// =============================================================================
// REPAYMENT PHASE
// =============================================================================

func TestGenerateSchedule_PlainLoan(t *testing.T) {
	// GIVEN: A 10-year loan at its exact EMI
	in := tenLakhAtEight()

	// WHEN: Generating the schedule
	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: 120 rows, ledger identities hold, balance ends at zero
	require.NoError(t, err)
	require.Len(t, rows, 120)
	assertScheduleInvariants(t, rows)

	assert.InDelta(t, 1_000_000*eightPercentMonthly, rows[0].Interest.InexactFloat64(), 1e-6)
	assert.Equal(t, date(2034, 12, 5), rows[119].Date)
	assertAmount(t, 1_000_000, rows[119].CumulativePrincipal)
}

func TestGenerateSchedule_CumulativePrincipalHasNoDrift(t *testing.T) {
	// GIVEN: A loan with prepayments and a rate change, walked for years
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 33_333.33, TriggerMonth: 7, Frequency: loan.PrepayOneTime},
		{Amount: 1_234.56, TriggerMonth: 3, Frequency: loan.PrepayQuarterly},
	}
	in.VariableRates = []loan.RateChangeEvent{{EffectiveMonth: 30, NewAnnualRatePercent: 8.35}}

	// WHEN: Generating the schedule
	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)

	// THEN: Running totals are exact: the principal repaid is the loan amount
	last := rows[len(rows)-1]
	assert.Equal(t, "1000000", last.CumulativePrincipal.String())
	assert.True(t, last.EndingBalance.IsZero())
	assert.Equal(t, int32(-loan.LedgerPlaces), last.Interest.Exponent())
}

func TestGenerateSchedule_FinalPaymentAdjusted(t *testing.T) {
	// GIVEN: An EMI slightly larger than needed
	in := tenLakhAtEight()
	in.EMI = 12200

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	assertScheduleInvariants(t, rows)

	// THEN: The last installment shrinks to exactly balance + interest
	last := rows[len(rows)-1]
	assert.True(t, last.EMI.LessThan(num(in.EMI)))
	assert.True(t, last.BeginningBalance.Add(last.Interest).Equal(last.EMI))
	assert.True(t, last.EndingBalance.IsZero())
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	rows, err := loan.GenerateSchedule(loan.ScheduleInput{
		Principal:   1200,
		EMI:         100,
		StartDate:   date(2025, 1, 1),
		PaymentDay:  1,
		Compounding: loan.CompoundMonthly,
	}, loan.DefaultLimits())

	require.NoError(t, err)
	require.Len(t, rows, 12)
	assertScheduleInvariants(t, rows)
	for _, r := range rows {
		assert.True(t, r.Interest.IsZero())
		assertAmount(t, 100, r.Principal)
	}
}

func TestGenerateSchedule_TenureLimitExceeded(t *testing.T) {
	// GIVEN: An EMI that only just beats interest (~800 months)
	in := tenLakhAtEight()
	in.EMI = 6700

	// WHEN: Simulating
	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The 360-installment cap trips with the balance still open
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrTenureLimitExceeded)

	var te *loan.TenureError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Simulated)
	assert.Equal(t, 360, te.Limit)
	assert.Greater(t, te.Remaining, 0.01)
}

// =============================================================================
// PREPAYMENTS
// =============================================================================

func TestGenerateSchedule_PrepaymentExceedsBalance(t *testing.T) {
	// GIVEN: A one-time prepayment of 20 lakh in month 5 on a 10 lakh loan
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 2_000_000, TriggerMonth: 5, Frequency: loan.PrepayOneTime},
	}

	// WHEN: Simulating
	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: Fails naming month 5
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrPrepaymentExceedsBalance)

	var pe *loan.PrepaymentExceedsBalanceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 5, pe.Month)
	assert.Equal(t, 2_000_000.0, pe.Prepayment)
	assert.Less(t, pe.Available, 1_000_000.0)
	assert.Contains(t, err.Error(), "month 5")
}

func TestGenerateSchedule_PrepaymentClearsExactBalance(t *testing.T) {
	// GIVEN: The exact post-EMI balance of month 3, prepaid in month 3
	in := tenLakhAtEight()
	plain, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	remaining := plain[2].EndingBalance.InexactFloat64()

	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: remaining, TriggerMonth: 3, Frequency: loan.PrepayOneTime},
	}

	// WHEN: Simulating
	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The loan closes in month 3
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assertScheduleInvariants(t, rows)
}

func TestGenerateSchedule_RecurringCadence(t *testing.T) {
	// GIVEN: 5,000 quarterly from month 2
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 5000, TriggerMonth: 2, Frequency: loan.PrepayQuarterly},
	}

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	assertScheduleInvariants(t, rows)

	// THEN: Prepayments land on months 2, 5, 8, ... only
	for _, r := range rows[:len(rows)-1] {
		if r.Month >= 2 && (r.Month-2)%3 == 0 {
			assertAmount(t, 5000, r.Prepayment, "month %d", r.Month)
		} else {
			assert.True(t, r.Prepayment.IsZero(), "month %d", r.Month)
		}
	}
	assert.Less(t, len(rows), 120)
}

func TestGenerateSchedule_RecurringPrepaymentOverflowFails(t *testing.T) {
	// GIVEN: 70,000 a month, which outgrows the balance before the EMI can close it
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 70_000, TriggerMonth: 1, Frequency: loan.PrepayMonthly},
	}

	// WHEN: Simulating
	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The month the recurring amount overshoots is reported, not trimmed
	require.Error(t, err)
	var pe *loan.PrepaymentExceedsBalanceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 13, pe.Month)
	assert.Equal(t, 70_000.0, pe.Prepayment)
	assert.Less(t, pe.Available, 70_000.0)
}

func TestGenerateSchedule_LargeMonthlyPrepaymentFailsInMonthTwo(t *testing.T) {
	// GIVEN: 5 lakh a month on a 10 lakh loan
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 500_000, TriggerMonth: 1, Frequency: loan.PrepayMonthly},
	}

	// WHEN: Simulating
	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: Month 1 fits, month 2 does not
	var pe *loan.PrepaymentExceedsBalanceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Month)
	assert.Contains(t, err.Error(), "month 2")
}

func TestGenerateSchedule_CombinedPrepaymentOverflowFails(t *testing.T) {
	// GIVEN: 9 lakh one-time plus 2 lakh quarterly, both first due in month 5
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 900_000, TriggerMonth: 5, Frequency: loan.PrepayOneTime},
		{Amount: 200_000, TriggerMonth: 5, Frequency: loan.PrepayQuarterly},
	}

	// WHEN: Simulating
	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The one-time part fits on its own, but the sum does not
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrPrepaymentExceedsBalance)
	var pe *loan.PrepaymentExceedsBalanceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 5, pe.Month)
	assert.Equal(t, 1_100_000.0, pe.Prepayment)
	assert.Greater(t, pe.Available, 900_000.0)
	assert.Less(t, pe.Available, 1_100_000.0)
}

func TestGenerateSchedule_RecurringDroppedWhenOneTimeClears(t *testing.T) {
	// GIVEN: A one-time payoff in month 3 alongside a quarterly plan starting then
	in := tenLakhAtEight()
	plain, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	remaining := plain[2].EndingBalance.InexactFloat64()

	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: remaining, TriggerMonth: 3, Frequency: loan.PrepayOneTime},
		{Amount: 5_000, TriggerMonth: 3, Frequency: loan.PrepayQuarterly},
	}

	// WHEN: Simulating
	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The loan closes in month 3 and the recurring share is not charged
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assertScheduleInvariants(t, rows)
	assert.True(t, rows[2].Prepayment.Equal(plain[2].EndingBalance))
	assert.True(t, rows[2].EndingBalance.IsZero())
}

func TestGenerateSchedule_RecurringDroppedWhenEMIClears(t *testing.T) {
	// GIVEN: An annual prepayment whose first due month is the last installment
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 5_000, TriggerMonth: 120, Frequency: loan.PrepayAnnually},
	}

	// WHEN: Simulating
	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: The EMI closes the loan; nothing is prepaid
	require.NoError(t, err)
	require.Len(t, rows, 120)
	assert.True(t, rows[119].Prepayment.IsZero())
	assert.True(t, rows[119].EndingBalance.IsZero())
}

func TestGenerateSchedule_OneTimeAndRecurringSameMonth(t *testing.T) {
	in := tenLakhAtEight()
	in.Prepayments = []loan.PrepaymentEvent{
		{Amount: 10_000, TriggerMonth: 12, Frequency: loan.PrepayAnnually},
		{Amount: 25_000, TriggerMonth: 12, Frequency: loan.PrepayOneTime},
	}

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	assertScheduleInvariants(t, rows)
	assertAmount(t, 35_000, rows[11].Prepayment)
	assertAmount(t, 10_000, rows[23].Prepayment)
}

// =============================================================================
// VARIABLE RATES
// =============================================================================

func TestGenerateSchedule_RateChange(t *testing.T) {
	// GIVEN: The rate rises to 10% from month 13
	in := tenLakhAtEight()
	in.VariableRates = []loan.RateChangeEvent{{EffectiveMonth: 13, NewAnnualRatePercent: 10}}

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	assertScheduleInvariants(t, rows)

	// THEN: Month 12 still at 8%, month 13 at 10%, tenure stretches
	assert.Equal(t, 8.0, rows[11].AnnualRatePercent)
	assert.Equal(t, 10.0, rows[12].AnnualRatePercent)
	assert.InDelta(t, rows[12].BeginningBalance.InexactFloat64()*0.10/12, rows[12].Interest.InexactFloat64(), 1e-6)
	assert.Greater(t, len(rows), 120)
}

func TestGenerateSchedule_RateChangesApplyInOrder(t *testing.T) {
	// GIVEN: Events supplied out of order
	in := tenLakhAtEight()
	in.VariableRates = []loan.RateChangeEvent{
		{EffectiveMonth: 24, NewAnnualRatePercent: 7},
		{EffectiveMonth: 6, NewAnnualRatePercent: 9},
	}

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)

	// THEN: The latest event at or before each month wins
	assert.Equal(t, 8.0, rows[4].AnnualRatePercent)
	assert.Equal(t, 9.0, rows[5].AnnualRatePercent)
	assert.Equal(t, 9.0, rows[22].AnnualRatePercent)
	assert.Equal(t, 7.0, rows[23].AnnualRatePercent)
}

func TestGenerateSchedule_EmiBelowInterestAfterRateHike(t *testing.T) {
	// GIVEN: The rate jumps to 20% in month 3; interest then exceeds the EMI
	in := tenLakhAtEight()
	in.VariableRates = []loan.RateChangeEvent{{EffectiveMonth: 3, NewAnnualRatePercent: 20}}

	_, err := loan.GenerateSchedule(in, loan.DefaultLimits())

	// THEN: Fails naming month 3
	require.Error(t, err)
	var ee *loan.EmiBelowInterestError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.Month)
	assert.Contains(t, err.Error(), "month 3")
}

// =============================================================================
// MORATORIUM
// =============================================================================

func TestGenerateSchedule_MoratoriumCapitalizes(t *testing.T) {
	// GIVEN: A 6-month moratorium on 10 lakh at 8%
	in := tenLakhAtEight()
	in.MoratoriumMonths = 6

	rows, err := loan.GenerateSchedule(in, loan.DefaultLimits())
	require.NoError(t, err)
	assertScheduleInvariants(t, rows)

	// THEN: The first 6 rows pay nothing and the balance strictly grows
	for i := 0; i < 6; i++ {
		r := rows[i]
		assert.True(t, r.Moratorium, "month %d", r.Month)
		assert.True(t, r.EMI.IsZero())
		assert.True(t, r.Principal.IsZero())
		assert.True(t, r.Prepayment.IsZero())
		assert.True(t, r.EndingBalance.GreaterThan(r.BeginningBalance))
		assert.InDelta(t, r.BeginningBalance.InexactFloat64()*eightPercentMonthly, r.Interest.InexactFloat64(), 1e-6)
	}
	assert.False(t, rows[6].Moratorium)
	assert.True(t, rows[6].BeginningBalance.GreaterThan(num(1_000_000)))
	assert.True(t, rows[6].EMI.IsPositive())

	// AND: With the pre-moratorium EMI, repayment runs past 120 installments
	assert.Greater(t, len(rows)-6, 120)
}
