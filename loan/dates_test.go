package loan_test

import (
	"testing"
	"time"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPaymentDate(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		paymentDay int
		month      int
		expected   time.Time
	}{
		{"first payment in start month", date(2025, time.January, 1), 5, 1, date(2025, time.January, 5)},
		{"start on the payment day", date(2025, time.January, 5), 5, 1, date(2025, time.January, 5)},
		{"payment day already passed", date(2025, time.January, 10), 5, 1, date(2025, time.February, 5)},
		{"later month", date(2025, time.January, 1), 5, 13, date(2026, time.January, 5)},
		{"31st clamps to February", date(2025, time.January, 1), 31, 2, date(2025, time.February, 28)},
		{"31st clamps to leap February", date(2024, time.January, 1), 31, 2, date(2024, time.February, 29)},
		{"31st clamps to April", date(2025, time.January, 1), 31, 4, date(2025, time.April, 30)},
		{"31st restored after short month", date(2025, time.January, 1), 31, 3, date(2025, time.March, 31)},
		{"year rollover from passed day", date(2025, time.December, 20), 5, 1, date(2026, time.January, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, loan.PaymentDate(tt.start, tt.paymentDay, tt.month))
		})
	}
}
