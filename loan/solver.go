package loan

import "math"

// =============================================================================
// PAYMENT SOLVER - closed-form EMI and tenure
// =============================================================================

// AnnuityPayment is the standard EMI formula P·r·(1+r)^n / ((1+r)^n − 1).
// At a zero rate the loan is repaid in straight-line installments.
func AnnuityPayment(principal, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return math.NaN()
	}
	if monthlyRate == 0 {
		return principal / float64(months)
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * growth / (growth - 1)
}

// SolveEMI returns the installment that repays principal over tenureMonths.
func SolveEMI(principal, monthlyRate float64, tenureMonths int) float64 {
	return AnnuityPayment(principal, monthlyRate, tenureMonths)
}

// SolveTenure returns the (fractional) number of installments of emi needed
// to repay principal. It fails when the EMI cannot outpace interest or the
// tenure exceeds maxMonths.
func SolveTenure(principal, monthlyRate, emi float64, maxMonths int) (float64, error) {
	if emi <= 0 {
		return 0, invalid("emi", "must be positive")
	}
	interest := principal * monthlyRate
	if monthlyRate > 0 && interest >= emi {
		return 0, &EmiBelowInterestError{EMI: emi, Interest: interest}
	}

	var months float64
	if monthlyRate == 0 {
		months = principal / emi
	} else {
		months = math.Log(emi/(emi-interest)) / math.Log(1+monthlyRate)
	}
	if !finite(months) {
		return 0, &NumericError{Stage: "tenure solver"}
	}
	if months > float64(maxMonths) {
		return 0, &TenureError{Months: months, Limit: maxMonths}
	}
	return months, nil
}

// wholeMonths rounds a solved tenure up to whole installments, ignoring
// floating noise just above an integer.
func wholeMonths(months float64) int {
	return int(math.Ceil(months - 1e-9))
}

// =============================================================================
// RATE SOLVER - bisection over the monthly rate
// =============================================================================

// DefaultBisectionIterations halves [0, 1] far below display precision.
const DefaultBisectionIterations = 100

// SolveRate returns the monthly rate at which emi repays principal over
// tenureMonths.
func SolveRate(principal, emi float64, tenureMonths int) (float64, error) {
	return solveRate(principal, emi, tenureMonths, 0, DefaultBisectionIterations)
}

// solveRate bisects the monthly rate in [0, 1]. When deferredMonths > 0 the
// principal first compounds at the candidate rate for that many months,
// matching a moratorium that capitalizes interest before repayment starts.
func solveRate(principal, emi float64, tenureMonths, deferredMonths, iterations int) (float64, error) {
	if emi*float64(tenureMonths) < principal {
		return 0, &InsufficientPaymentsError{EMI: emi, TenureMonths: tenureMonths, Principal: principal}
	}

	low, high := 0.0, 1.0
	for i := 0; i < iterations; i++ {
		mid := (low + high) / 2
		balance := principal
		if deferredMonths > 0 {
			balance = principal * math.Pow(1+mid, float64(deferredMonths))
		}
		trial := AnnuityPayment(balance, mid, tenureMonths)
		// Non-finite trials only occur at the extremes; treat them as too high.
		if !finite(trial) || trial > emi {
			high = mid
		} else {
			low = mid
		}
	}

	rate := (low + high) / 2
	if !finite(rate) {
		return 0, &NumericError{Stage: "rate solver"}
	}
	return rate, nil
}
