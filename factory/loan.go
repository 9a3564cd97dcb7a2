/*
Package factory converts JSON loan forms into engine requests.

PURPOSE:
  The form layer hands over raw values: amounts typed with thousands
  separators ("10,00,000"), numbers sent as strings, optional fields left
  blank. The factory parses them into a loan.Request. Values that fail to
  parse become Request.FieldErrors, so the engine reports them as ordinary
  validation errors naming the field.

JSON SCHEMA:
  {
    "solveFor": "rate",                 // rate | emi | tenure
    "principal": "10,00,000",
    "annualRatePercent": "8.5",         // ignored when solving for rate
    "tenureYears": 15,                  // or "tenureMonths": 180
    "emi": "12,133",                    // ignored when solving for emi
    "startDate": "2025-01-01",          // default: today
    "paymentDay": 5,                    // default: 5
    "compoundingPeriod": "monthly",     // default: monthly
    "moratoriumMonths": 0,
    "clientName": "A. Borrower",        // report title only
    "prepayments": [
      {"amount": "50000", "triggerMonth": 12, "frequency": "oneTime"}
    ],
    "variableRates": [
      {"effectiveMonth": 24, "newAnnualRatePercent": "9.25"}
    ]
  }

  Any numeric field accepts a JSON number or a string.

USAGE:
  f := factory.NewLoanFactory()
  req, err := f.ParseRequest(body)   // err only for malformed JSON
  result, err := calc.Calculate(req)

SEE ALSO:
  - loan/types.go: Request, Mode, Terms
  - api/scenarios.go: preset forms
*/
package factory

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hrsagar28/loan-calculator-app/affordability"
	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of StartDate.
const DateLayout = "2006-01-02"

// DefaultPaymentDay is used when the form leaves the payment day blank.
const DefaultPaymentDay = 5

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// FormValue is a numeric form field. It unmarshals from a JSON number or
// string and keeps the raw text until parsed.
type FormValue string

// UnmarshalJSON accepts 12, 12.5, "12,000" and null.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

// Number formats a float as a FormValue.
func Number(f float64) FormValue {
	return FormValue(decimal.NewFromFloat(f).String())
}

// LoanJSON is the JSON representation of a loan form.
type LoanJSON struct {
	SolveFor          string           `json:"solveFor"`
	Principal         FormValue        `json:"principal,omitempty"`
	AnnualRatePercent FormValue        `json:"annualRatePercent,omitempty"`
	TenureYears       FormValue        `json:"tenureYears,omitempty"`
	TenureMonths      FormValue        `json:"tenureMonths,omitempty"`
	EMI               FormValue        `json:"emi,omitempty"`
	StartDate         string           `json:"startDate,omitempty"`
	PaymentDay        FormValue        `json:"paymentDay,omitempty"`
	CompoundingPeriod string           `json:"compoundingPeriod,omitempty"`
	MoratoriumMonths  FormValue        `json:"moratoriumMonths,omitempty"`
	ClientName        string           `json:"clientName,omitempty"`
	Prepayments       []PrepaymentJSON `json:"prepayments,omitempty"`
	VariableRates     []RateChangeJSON `json:"variableRates,omitempty"`
}

// PrepaymentJSON represents a prepayment event.
type PrepaymentJSON struct {
	Amount       FormValue `json:"amount"`
	TriggerMonth FormValue `json:"triggerMonth"`
	Frequency    string    `json:"frequency,omitempty"` // default oneTime
}

// RateChangeJSON represents a variable-rate event.
type RateChangeJSON struct {
	EffectiveMonth       FormValue `json:"effectiveMonth"`
	NewAnnualRatePercent FormValue `json:"newAnnualRatePercent"`
}

// =============================================================================
// LOAN FACTORY
// =============================================================================

// LoanFactory converts loan forms to engine requests.
type LoanFactory struct {
	now func() time.Time
}

// NewLoanFactory creates a new loan factory.
func NewLoanFactory() *LoanFactory {
	return &LoanFactory{now: loan.Today}
}

// ParseForm decodes a JSON loan form without interpreting it.
func (f *LoanFactory) ParseForm(data []byte) (LoanJSON, error) {
	var lj LoanJSON
	if err := json.Unmarshal(data, &lj); err != nil {
		return LoanJSON{}, fmt.Errorf("failed to parse loan JSON: %w", err)
	}
	return lj, nil
}

// ParseRequest parses a JSON loan form into a Request.
func (f *LoanFactory) ParseRequest(data []byte) (loan.Request, error) {
	lj, err := f.ParseForm(data)
	if err != nil {
		return loan.Request{}, err
	}
	return f.FromJSON(lj), nil
}

// FromJSON converts a LoanJSON to a Request. It never fails: problems are
// recorded in Request.FieldErrors for the engine to report.
func (f *LoanFactory) FromJSON(lj LoanJSON) loan.Request {
	p := &fieldParser{errs: make(map[string]string)}

	principal := p.float("principal", lj.Principal)
	var mode loan.Mode
	switch strings.ToLower(strings.TrimSpace(lj.SolveFor)) {
	case "rate":
		mode = loan.SolveForRate{
			Principal:    principal,
			EMI:          p.float("emi", lj.EMI),
			TenureMonths: p.tenure(lj),
		}
	case "emi":
		mode = loan.SolveForEMI{
			Principal:         principal,
			AnnualRatePercent: p.float("annualRatePercent", lj.AnnualRatePercent),
			TenureMonths:      p.tenure(lj),
		}
	case "tenure":
		mode = loan.SolveForTenure{
			Principal:         principal,
			AnnualRatePercent: p.float("annualRatePercent", lj.AnnualRatePercent),
			EMI:               p.float("emi", lj.EMI),
		}
	default:
		p.errs["solveFor"] = `must be one of "rate", "emi" or "tenure"`
	}

	terms := loan.Terms{
		StartDate:        f.startDate(p, lj.StartDate),
		PaymentDay:       p.intOr("paymentDay", lj.PaymentDay, DefaultPaymentDay),
		Compounding:      loan.CompoundMonthly,
		MoratoriumMonths: p.intOr("moratoriumMonths", lj.MoratoriumMonths, 0),
	}
	if lj.CompoundingPeriod != "" {
		terms.Compounding = loan.CompoundingPeriod(lj.CompoundingPeriod)
	}

	for i, pj := range lj.Prepayments {
		field := fmt.Sprintf("prepayments[%d]", i)
		freq := loan.PrepayOneTime
		if pj.Frequency != "" {
			freq = loan.PrepaymentFrequency(pj.Frequency)
		}
		terms.Prepayments = append(terms.Prepayments, loan.PrepaymentEvent{
			Amount:       p.float(field+".amount", pj.Amount),
			TriggerMonth: p.intOr(field+".triggerMonth", pj.TriggerMonth, 0),
			Frequency:    freq,
		})
	}
	for i, rj := range lj.VariableRates {
		field := fmt.Sprintf("variableRates[%d]", i)
		terms.VariableRates = append(terms.VariableRates, loan.RateChangeEvent{
			EffectiveMonth:       p.intOr(field+".effectiveMonth", rj.EffectiveMonth, 0),
			NewAnnualRatePercent: p.float(field+".newAnnualRatePercent", rj.NewAnnualRatePercent),
		})
	}

	req := loan.Request{Mode: mode, Terms: terms}
	if len(p.errs) > 0 {
		req.FieldErrors = p.errs
	}
	return req
}

func (f *LoanFactory) startDate(p *fieldParser, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return f.now()
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		p.errs["startDate"] = "must be a date in YYYY-MM-DD format"
		return time.Time{}
	}
	return t
}

// FromEstimate builds a rate-mode form from an affordability estimate, so
// the affordable loan can be saved and reviewed like any other.
func FromEstimate(est affordability.Estimate, start time.Time) LoanJSON {
	mode := est.RateMode()
	return LoanJSON{
		SolveFor:     "rate",
		Principal:    Number(mode.Principal),
		EMI:          Number(mode.EMI),
		TenureMonths: Number(float64(mode.TenureMonths)),
		StartDate:    start.Format(DateLayout),
	}
}

// =============================================================================
// FIELD PARSING
// =============================================================================

// fieldParser collects per-field parse failures.
type fieldParser struct {
	errs map[string]string
}

// decimal parses v, stripping thousands separators. Blank values are
// reported as absent.
func (p *fieldParser) decimal(field string, v FormValue) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(string(v), ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.errs[field] = "invalid number format"
		return decimal.Zero, false
	}
	return d, true
}

// float returns 0 for blank or invalid values; the engine rejects 0 where a
// value is required.
func (p *fieldParser) float(field string, v FormValue) float64 {
	d, ok := p.decimal(field, v)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// maxWholeNumber bounds every month, day and year count before conversion
// to int, so huge inputs cannot wrap into a valid-looking value.
const maxWholeNumber = 10_000

func (p *fieldParser) intOr(field string, v FormValue, fallback int) int {
	d, ok := p.decimal(field, v)
	if !ok {
		return fallback
	}
	if !d.IsInteger() {
		p.errs[field] = "must be a whole number"
		return fallback
	}
	if d.Abs().GreaterThan(decimal.NewFromInt(maxWholeNumber)) {
		p.errs[field] = "is out of range"
		return fallback
	}
	return int(d.IntPart())
}

// tenure prefers tenureMonths and falls back to tenureYears x 12.
func (p *fieldParser) tenure(lj LoanJSON) int {
	if strings.TrimSpace(string(lj.TenureMonths)) != "" {
		return p.intOr("tenureMonths", lj.TenureMonths, 0)
	}
	return p.intOr("tenureYears", lj.TenureYears, 0) * 12
}
