package loan

import "time"

// =============================================================================
// PAYMENT DATES
// =============================================================================

// PaymentDate returns the due date of the given 1-indexed schedule month.
//
// The first installment falls in the start month when the payment day has not
// yet passed, otherwise in the following month. The day is clamped to the last
// day of short months (a 31st payment day lands on Feb 28/29, Apr 30, ...).
func PaymentDate(start time.Time, paymentDay, month int) time.Time {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.Day() > paymentDay {
		first = first.AddDate(0, 1, 0)
	}
	// Month arithmetic on the 1st never overflows into the next month.
	due := first.AddDate(0, month-1, 0)
	day := paymentDay
	if last := daysInMonth(due.Year(), due.Month()); day > last {
		day = last
	}
	return time.Date(due.Year(), due.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
