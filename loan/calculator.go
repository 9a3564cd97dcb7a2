/*
calculator.go - Orchestration of one calculation

FLOW:
  1. Validate       inputs for the active mode, field errors, limits
  2. Resolve        the unknown quantity (rate, EMI or tenure); with a
                    moratorium the solvers see the capitalized principal
  3. Baseline run   schedule without prepayments or rate changes
  4. Final run      schedule with everything (skipped when identical)
  5. Aggregate      fiscal-year buckets and savings
  6. Package        a fresh Result, or the first error untouched

The Calculator holds only configuration. Calculate never mutates it, so one
instance is safe for concurrent use.
*/
package loan

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// LIMITS
// =============================================================================

// Limits bounds what the engine accepts and how far it simulates.
type Limits struct {
	MaxTenureMonths     int     // cap on repayment installments
	MaxMoratoriumMonths int     // cap on the deferral period
	MaxPrincipal        float64 // sanity ceiling on the loan amount
	RateCeilingPercent  float64 // highest accepted or solved annual rate
	BalanceEpsilon      float64 // balance treated as fully repaid
	BisectionIterations int
}

// DefaultLimits returns a 30-year, 100% ceiling configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxTenureMonths:     360,
		MaxMoratoriumMonths: 60,
		MaxPrincipal:        1e9,
		RateCeilingPercent:  100,
		BalanceEpsilon:      0.01,
		BisectionIterations: DefaultBisectionIterations,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxTenureMonths <= 0 {
		l.MaxTenureMonths = d.MaxTenureMonths
	}
	if l.MaxMoratoriumMonths <= 0 {
		l.MaxMoratoriumMonths = d.MaxMoratoriumMonths
	}
	if l.MaxPrincipal <= 0 {
		l.MaxPrincipal = d.MaxPrincipal
	}
	if l.RateCeilingPercent <= 0 {
		l.RateCeilingPercent = d.RateCeilingPercent
	}
	if l.BalanceEpsilon <= 0 {
		l.BalanceEpsilon = d.BalanceEpsilon
	}
	if l.BisectionIterations <= 0 {
		l.BisectionIterations = d.BisectionIterations
	}
	return l
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator runs calculations under a fixed set of limits.
type Calculator struct {
	limits Limits
	logger *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used for solver and schedule diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimits overrides the default limits. Zero fields keep their defaults.
func WithLimits(limits Limits) Option {
	return func(c *Calculator) {
		c.limits = limits.withDefaults()
	}
}

// NewCalculator creates a calculator with DefaultLimits and a no-op logger.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		limits: DefaultLimits(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limits returns the limits in force.
func (c *Calculator) Limits() Limits {
	return c.limits
}

// resolved is the outcome of step 2: all three quantities known.
type resolved struct {
	annualRatePercent float64
	emi               float64
	tenureMonths      int
}

// Calculate runs one calculation. On error no partial result is returned.
func (c *Calculator) Calculate(req Request) (*Result, error) {
	result, err := c.calculate(req)
	if err != nil {
		c.logger.Debug("calculation failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (c *Calculator) calculate(req Request) (*Result, error) {
	if err := c.Validate(req); err != nil {
		return nil, err
	}
	terms := req.Terms
	principal := req.Mode.principal()

	solved, err := c.resolve(req.Mode, terms)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loan solved",
		zap.String("mode", req.Mode.ModeName()),
		zap.Float64("annual_rate_percent", solved.annualRatePercent),
		zap.Float64("emi", solved.emi),
		zap.Int("tenure_months", solved.tenureMonths),
	)

	input := ScheduleInput{
		Principal:         principal,
		AnnualRatePercent: solved.annualRatePercent,
		EMI:               solved.emi,
		StartDate:         terms.StartDate,
		PaymentDay:        terms.PaymentDay,
		Compounding:       terms.Compounding,
		MoratoriumMonths:  terms.MoratoriumMonths,
	}
	baseline, err := GenerateSchedule(input, c.limits)
	if err != nil {
		return nil, err
	}

	var notices []string
	if _, tenureMode := req.Mode.(SolveForTenure); !tenureMode {
		if actual := len(baseline) - terms.MoratoriumMonths; actual != solved.tenureMonths {
			notices = append(notices, fmt.Sprintf(
				"With an EMI of %.2f the loan is repaid in %d months, not the requested %d.",
				solved.emi, actual, solved.tenureMonths))
		}
	}

	final := baseline
	if len(terms.Prepayments) > 0 || len(terms.VariableRates) > 0 {
		input.Prepayments = terms.Prepayments
		input.VariableRates = terms.VariableRates
		final, err = GenerateSchedule(input, c.limits)
		if err != nil {
			return nil, err
		}
	}
	c.logger.Debug("schedule generated",
		zap.Int("baseline_months", len(baseline)),
		zap.Int("final_months", len(final)),
	)

	result := &Result{
		Mode:                   req.Mode.ModeName(),
		Principal:              decimal.NewFromFloat(principal),
		CalculatedRatePercent:  solved.annualRatePercent,
		CalculatedEMI:          decimal.NewFromFloat(solved.emi),
		CalculatedTenureMonths: solved.tenureMonths,
		MoratoriumMonths:       terms.MoratoriumMonths,
		RepaymentMonths:        len(final) - terms.MoratoriumMonths,
		BaselineInterest:       totalInterest(baseline),
		MonthlySchedule:        final,
		FinancialYears:         BucketByFiscalYear(final),
		Notices:                notices,
	}
	for _, row := range final {
		if row.Moratorium {
			result.CapitalizedInterest = result.CapitalizedInterest.Add(row.Interest)
		}
		result.TotalInterest = result.TotalInterest.Add(row.Interest)
		result.TotalPayment = result.TotalPayment.Add(row.EMI).Add(row.Prepayment)
	}
	if n := len(final); n > 0 {
		result.LoanEndDate = final[n-1].Date
	}
	if len(terms.Prepayments) > 0 {
		savings := CompareWithPrepayments(baseline, final)
		result.InterestSaved = savings.InterestSaved
		result.TenureReducedMonths = savings.TenureReducedMonths
	}
	return result, nil
}

// =============================================================================
// RESOLVE - dispatch to the solver for the active mode
// =============================================================================

func (c *Calculator) resolve(mode Mode, terms Terms) (resolved, error) {
	deferred := float64(terms.MoratoriumMonths)

	switch m := mode.(type) {
	case SolveForEMI:
		r := EffectiveMonthlyRate(m.AnnualRatePercent, terms.Compounding)
		emi := SolveEMI(m.Principal*math.Pow(1+r, deferred), r, m.TenureMonths)
		if !finite(emi) || emi <= 0 {
			return resolved{}, &NumericError{Stage: "emi solver"}
		}
		return resolved{annualRatePercent: m.AnnualRatePercent, emi: emi, tenureMonths: m.TenureMonths}, nil

	case SolveForTenure:
		r := EffectiveMonthlyRate(m.AnnualRatePercent, terms.Compounding)
		months, err := SolveTenure(m.Principal*math.Pow(1+r, deferred), r, m.EMI, c.limits.MaxTenureMonths)
		if err != nil {
			return resolved{}, err
		}
		return resolved{annualRatePercent: m.AnnualRatePercent, emi: m.EMI, tenureMonths: wholeMonths(months)}, nil

	case SolveForRate:
		monthly, err := solveRate(m.Principal, m.EMI, m.TenureMonths, terms.MoratoriumMonths, c.limits.BisectionIterations)
		if err != nil {
			return resolved{}, err
		}
		annual := NominalAnnualRate(monthly, terms.Compounding)
		if !finite(annual) {
			return resolved{}, &NumericError{Stage: "rate solver"}
		}
		if annual > c.limits.RateCeilingPercent {
			return resolved{}, &RateOutOfRangeError{AnnualRatePercent: annual, CeilingPercent: c.limits.RateCeilingPercent}
		}
		return resolved{annualRatePercent: annual, emi: m.EMI, tenureMonths: m.TenureMonths}, nil
	}
	return resolved{}, invalid("mode", "unsupported solve mode %T", mode)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks a request without calculating. Calculate calls it first.
func (c *Calculator) Validate(req Request) error {
	if len(req.FieldErrors) > 0 {
		fields := make([]string, 0, len(req.FieldErrors))
		for f := range req.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return &ValidationError{Field: fields[0], Message: req.FieldErrors[fields[0]]}
	}
	if req.Mode == nil {
		return invalid("mode", "is required")
	}
	if err := c.validateMode(req.Mode); err != nil {
		return err
	}
	return c.validateTerms(req.Terms)
}

func (c *Calculator) validateMode(mode Mode) error {
	if err := c.checkPrincipal(mode.principal()); err != nil {
		return err
	}
	switch m := mode.(type) {
	case SolveForRate:
		if err := checkPositive("emi", m.EMI); err != nil {
			return err
		}
		return c.checkTenure(m.TenureMonths)
	case SolveForEMI:
		if err := c.checkRate("annualRatePercent", m.AnnualRatePercent); err != nil {
			return err
		}
		return c.checkTenure(m.TenureMonths)
	case SolveForTenure:
		if err := c.checkRate("annualRatePercent", m.AnnualRatePercent); err != nil {
			return err
		}
		return checkPositive("emi", m.EMI)
	}
	return invalid("mode", "unsupported solve mode %T", mode)
}

func (c *Calculator) validateTerms(t Terms) error {
	if t.StartDate.IsZero() {
		return invalid("startDate", "is required")
	}
	if t.PaymentDay < 1 || t.PaymentDay > 31 {
		return invalid("paymentDay", "must be between 1 and 31")
	}
	if !t.Compounding.Valid() {
		return invalid("compoundingPeriod", "unsupported value %q", t.Compounding)
	}
	if t.MoratoriumMonths < 0 || t.MoratoriumMonths > c.limits.MaxMoratoriumMonths {
		return invalid("moratoriumMonths", "must be between 0 and %d", c.limits.MaxMoratoriumMonths)
	}

	for i, p := range t.Prepayments {
		field := fmt.Sprintf("prepayments[%d]", i)
		if err := checkPositive(field+".amount", p.Amount); err != nil {
			return err
		}
		if p.TriggerMonth < 1 {
			return invalid(field+".triggerMonth", "must be at least 1")
		}
		if !p.Frequency.Valid() {
			return invalid(field+".frequency", "unsupported value %q", p.Frequency)
		}
		if !p.Recurring() && p.TriggerMonth <= t.MoratoriumMonths {
			return invalid(field+".triggerMonth", "month %d falls inside the %d-month moratorium",
				p.TriggerMonth, t.MoratoriumMonths)
		}
	}
	for i, r := range t.VariableRates {
		field := fmt.Sprintf("variableRates[%d]", i)
		if r.EffectiveMonth < 1 {
			return invalid(field+".effectiveMonth", "must be at least 1")
		}
		if err := c.checkRate(field+".newAnnualRatePercent", r.NewAnnualRatePercent); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) checkPrincipal(p float64) error {
	if err := checkPositive("principal", p); err != nil {
		return err
	}
	if p > c.limits.MaxPrincipal {
		return invalid("principal", "is too high (maximum %.0f)", c.limits.MaxPrincipal)
	}
	return nil
}

func (c *Calculator) checkTenure(months int) error {
	if months < 1 || months > c.limits.MaxTenureMonths {
		return invalid("tenureMonths", "must be between 1 and %d", c.limits.MaxTenureMonths)
	}
	return nil
}

func (c *Calculator) checkRate(field string, pct float64) error {
	if !finite(pct) || pct < 0 || pct > c.limits.RateCeilingPercent {
		return invalid(field, "must be between 0 and %.0f", c.limits.RateCeilingPercent)
	}
	return nil
}

func checkPositive(field string, v float64) error {
	if !finite(v) || v <= 0 {
		return invalid(field, "must be a positive number")
	}
	return nil
}

// Today is the default start date for callers that omit one.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
