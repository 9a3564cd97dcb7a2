package loan_test

import (
	"testing"
	"time"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		date  time.Time
		label string
		start time.Time
	}{
		{date(2025, time.June, 5), "FY 2025-26", date(2025, time.April, 1)},
		{date(2026, time.February, 5), "FY 2025-26", date(2025, time.April, 1)},
		{date(2026, time.March, 31), "FY 2025-26", date(2025, time.April, 1)},
		{date(2026, time.April, 1), "FY 2026-27", date(2026, time.April, 1)},
		{date(1999, time.December, 1), "FY 1999-00", date(1999, time.April, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			label, start, end := loan.FiscalYear(tt.date)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.start.AddDate(1, 0, -1), end)
		})
	}
}

func TestBucketByFiscalYear(t *testing.T) {
	// GIVEN: A 12-month loan paid on the 5th from January 2025
	result, err := loan.NewCalculator().Calculate(loan.Request{
		Mode:  loan.SolveForEMI{Principal: 120_000, AnnualRatePercent: 10, TenureMonths: 12},
		Terms: monthlyTerms(),
	})
	require.NoError(t, err)

	// WHEN: Bucketing into April-March years
	buckets := result.FinancialYears

	// THEN: January-March fall in FY 2024-25, the rest in FY 2025-26
	require.Len(t, buckets, 2)
	assert.Equal(t, "FY 2024-25", buckets[0].Label)
	assert.Len(t, buckets[0].Rows, 3)
	assert.Equal(t, "FY 2025-26", buckets[1].Label)
	assert.Len(t, buckets[1].Rows, 9)

	// AND: Totals reconcile with the schedule
	var interest, principal decimal.Decimal
	for _, b := range buckets {
		interest = interest.Add(b.Interest)
		principal = principal.Add(b.Principal).Add(b.Prepayment)
	}
	assert.True(t, result.TotalInterest.Equal(interest))
	assertAmount(t, 120_000, principal)
	assert.True(t, buckets[0].Rows[2].EndingBalance.Equal(buckets[0].ClosingBalance))
	assert.True(t, buckets[1].ClosingBalance.IsZero())
}

func TestBucketByFiscalYear_Empty(t *testing.T) {
	assert.Empty(t, loan.BucketByFiscalYear(nil))
}
