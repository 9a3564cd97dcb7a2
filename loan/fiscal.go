package loan

import (
	"fmt"
	"time"
)

// =============================================================================
// FISCAL AGGREGATOR - April 1 to March 31 buckets
// =============================================================================

// FiscalYearStartMonth is the first month of the financial year.
const FiscalYearStartMonth = time.April

// FiscalYear returns the label and bounds of the financial year containing date.
//
//	2025-06-05 -> "FY 2025-26", [2025-04-01, 2026-03-31]
//	2026-02-05 -> "FY 2025-26", [2025-04-01, 2026-03-31]
func FiscalYear(date time.Time) (label string, start, end time.Time) {
	year := date.Year()
	if date.Month() < FiscalYearStartMonth {
		year--
	}
	start = time.Date(year, FiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(1, 0, -1)
	return fmt.Sprintf("FY %d-%02d", year, (year+1)%100), start, end
}

// BucketByFiscalYear folds chronological rows into financial-year buckets,
// preserving first-seen order.
func BucketByFiscalYear(rows []ScheduleRow) []FiscalYearBucket {
	var buckets []FiscalYearBucket
	index := make(map[string]int)

	for _, row := range rows {
		label, start, end := FiscalYear(row.Date)
		i, ok := index[label]
		if !ok {
			buckets = append(buckets, FiscalYearBucket{Label: label, Start: start, End: end})
			i = len(buckets) - 1
			index[label] = i
		}
		b := &buckets[i]
		b.Principal = b.Principal.Add(row.Principal)
		b.Interest = b.Interest.Add(row.Interest)
		b.Prepayment = b.Prepayment.Add(row.Prepayment)
		b.ClosingBalance = row.EndingBalance
		b.Rows = append(b.Rows, row)
	}
	return buckets
}
