package loan

import "github.com/shopspring/decimal"

// Savings is the difference prepayments make against the baseline schedule.
type Savings struct {
	InterestSaved       decimal.Decimal
	TenureReducedMonths int
}

// CompareWithPrepayments diffs a baseline schedule (no prepayments) against
// the final one.
func CompareWithPrepayments(baseline, final []ScheduleRow) Savings {
	return Savings{
		InterestSaved:       totalInterest(baseline).Sub(totalInterest(final)),
		TenureReducedMonths: len(baseline) - len(final),
	}
}

func totalInterest(rows []ScheduleRow) decimal.Decimal {
	var sum decimal.Decimal
	for _, r := range rows {
		sum = sum.Add(r.Interest)
	}
	return sum
}
