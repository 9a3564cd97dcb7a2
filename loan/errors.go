/*
errors.go - Centralized error types for the loan engine

PURPOSE:
  All calculation failures in one place. Every failure is terminal: no
  partial Result is returned alongside an error.

ERROR CATEGORIES:
  1. Validation errors - missing or out-of-range inputs for the active mode
  2. Feasibility errors - inputs that cannot amortize (EMI below interest,
     payments short of principal, tenure beyond the cap, oversized prepayment)
  3. Numeric errors - NaN/Inf escaping the math

USAGE:
  Callers classify with errors.Is against the sentinels, or errors.As to
  read the details:

    var pe *loan.PrepaymentExceedsBalanceError
    if errors.As(err, &pe) {
        fmt.Println("offending month:", pe.Month)
    }

SEE ALSO:
  - calculator.go: where validation errors are raised
  - schedule.go: where simulation errors are raised
*/
package loan

import (
	"errors"
	"fmt"
	"math"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when required inputs are missing or invalid.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientPayments is returned in rate mode when EMI x tenure
	// does not even cover the principal.
	ErrInsufficientPayments = errors.New("insufficient payments")

	// ErrRateOutOfRange is returned when the solved annual rate exceeds the ceiling.
	ErrRateOutOfRange = errors.New("rate out of range")

	// ErrEmiBelowInterest is returned when the EMI does not exceed the
	// monthly interest, so the balance never declines.
	ErrEmiBelowInterest = errors.New("emi below interest")

	// ErrTenureExceedsLimit is returned when a solved tenure exceeds the cap.
	ErrTenureExceedsLimit = errors.New("tenure exceeds limit")

	// ErrTenureLimitExceeded is returned when the simulation hits the cap
	// without reaching a zero balance.
	ErrTenureLimitExceeded = errors.New("tenure limit exceeded")

	// ErrPrepaymentExceedsBalance is returned when a prepayment is larger than
	// the balance left after that month's scheduled principal.
	ErrPrepaymentExceedsBalance = errors.New("prepayment exceeds balance")

	// ErrNumericDegeneracy is returned when NaN or Inf escapes the math.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientPaymentsError reports the shortfall of EMI x tenure.
type InsufficientPaymentsError struct {
	EMI          float64
	TenureMonths int
	Principal    float64
}

func (e *InsufficientPaymentsError) Error() string {
	return fmt.Sprintf("EMI %.2f over %d months totals %.2f, less than the principal %.2f",
		e.EMI, e.TenureMonths, e.EMI*float64(e.TenureMonths), e.Principal)
}

func (e *InsufficientPaymentsError) Unwrap() error { return ErrInsufficientPayments }

// RateOutOfRangeError reports a solved rate above the configured ceiling.
type RateOutOfRangeError struct {
	AnnualRatePercent float64
	CeilingPercent    float64
}

func (e *RateOutOfRangeError) Error() string {
	return fmt.Sprintf("calculated rate %.2f%% exceeds the %.0f%% ceiling; check the EMI and tenure",
		e.AnnualRatePercent, e.CeilingPercent)
}

func (e *RateOutOfRangeError) Unwrap() error { return ErrRateOutOfRange }

// EmiBelowInterestError reports a month where interest swallows the EMI.
// Month is 0 when the check happened before simulation.
type EmiBelowInterestError struct {
	Month    int
	EMI      float64
	Interest float64
}

func (e *EmiBelowInterestError) Error() string {
	if e.Month == 0 {
		return fmt.Sprintf("EMI %.2f does not exceed the monthly interest %.2f; the loan will never be repaid",
			e.EMI, e.Interest)
	}
	return fmt.Sprintf("EMI %.2f does not exceed the interest %.2f due in month %d; the loan will never be repaid",
		e.EMI, e.Interest, e.Month)
}

func (e *EmiBelowInterestError) Unwrap() error { return ErrEmiBelowInterest }

// TenureError reports a tenure beyond the cap. Simulated distinguishes a
// schedule that ran out of months from a closed-form tenure that was too long.
type TenureError struct {
	Months    float64
	Limit     int
	Remaining float64
	Simulated bool
}

func (e *TenureError) Error() string {
	if e.Simulated {
		return fmt.Sprintf("loan not repaid within the %d-month limit (%.2f still outstanding)",
			e.Limit, e.Remaining)
	}
	return fmt.Sprintf("calculated tenure of %.0f months exceeds the %d-month (%d-year) limit",
		math.Ceil(e.Months), e.Limit, e.Limit/12)
}

func (e *TenureError) Unwrap() error {
	if e.Simulated {
		return ErrTenureLimitExceeded
	}
	return ErrTenureExceedsLimit
}

// PrepaymentExceedsBalanceError names the month whose prepayment overflows.
type PrepaymentExceedsBalanceError struct {
	Month      int
	Prepayment float64
	Available  float64
}

func (e *PrepaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("prepayment of %.2f in month %d exceeds the remaining balance of %.2f",
		e.Prepayment, e.Month, e.Available)
}

func (e *PrepaymentExceedsBalanceError) Unwrap() error { return ErrPrepaymentExceedsBalance }

// NumericError reports where a non-finite value appeared.
type NumericError struct {
	Stage string
	Month int
}

func (e *NumericError) Error() string {
	if e.Month > 0 {
		return fmt.Sprintf("calculation produced an invalid number in %s (month %d)", e.Stage, e.Month)
	}
	return fmt.Sprintf("calculation produced an invalid number in %s", e.Stage)
}

func (e *NumericError) Unwrap() error { return ErrNumericDegeneracy }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the inputs were rejected before calculating.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInfeasible returns true if the inputs were well-formed but describe a
// loan that cannot be amortized as asked.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrInsufficientPayments) ||
		errors.Is(err, ErrRateOutOfRange) ||
		errors.Is(err, ErrEmiBelowInterest) ||
		errors.Is(err, ErrTenureExceedsLimit) ||
		errors.Is(err, ErrTenureLimitExceeded) ||
		errors.Is(err, ErrPrepaymentExceedsBalance)
}

// IsNumeric returns true if the math itself broke down.
func IsNumeric(err error) bool {
	return errors.Is(err, ErrNumericDegeneracy)
}

// IsClientError returns true if different inputs could succeed.
func IsClientError(err error) bool {
	return IsValidation(err) || IsInfeasible(err)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
