/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's float64 model from the external API contract: every amount
  leaves the API as a decimal rounded to 2 places (banker's rounding), every
  rate to 4 places.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Calculation:
    factory.LoanJSON (request), CalculationDTO, ScheduleRowDTO, FiscalYearDTO

  Affordability:
    factory.AffordabilityJSON (request), AffordabilityDTO

  Profiles:
    ProfileRequest, ProfileDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done by the factory and the engine, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/loan.go: LoanJSON form type
*/
package api

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/hrsagar28/loan-calculator-app/affordability"
	"github.com/hrsagar28/loan-calculator-app/factory"
	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/hrsagar28/loan-calculator-app/report"
	"github.com/hrsagar28/loan-calculator-app/store"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATION
// =============================================================================

// CalculationDTO is the result of one calculation.
type CalculationDTO struct {
	Mode                   string           `json:"mode"`
	Principal              decimal.Decimal  `json:"principal"`
	CalculatedRatePercent  decimal.Decimal  `json:"calculatedRatePercent"`
	CalculatedEMI          decimal.Decimal  `json:"calculatedEmi"`
	CalculatedTenureMonths int              `json:"calculatedTenureMonths"`
	MoratoriumMonths       int              `json:"moratoriumMonths"`
	CapitalizedInterest    decimal.Decimal  `json:"capitalizedInterest"`
	RepaymentMonths        int              `json:"repaymentMonths"`
	TotalInterest          decimal.Decimal  `json:"totalInterest"`
	TotalPayment           decimal.Decimal  `json:"totalPayment"`
	BaselineInterest       decimal.Decimal  `json:"baselineInterest"`
	InterestSaved          decimal.Decimal  `json:"interestSaved"`
	TenureReducedMonths    int              `json:"tenureReducedMonths"`
	LoanEndDate            string           `json:"loanEndDate,omitempty"`
	Notices                []string         `json:"notices,omitempty"`
	MonthlySchedule        []ScheduleRowDTO `json:"monthlySchedule"`
	FinancialYears         []FiscalYearDTO  `json:"financialYears"`
}

// ScheduleRowDTO is one month of the amortization schedule.
type ScheduleRowDTO struct {
	Month               int             `json:"month"`
	Date                string          `json:"date"`
	BeginningBalance    decimal.Decimal `json:"beginningBalance"`
	EMI                 decimal.Decimal `json:"emi"`
	Principal           decimal.Decimal `json:"principal"`
	Interest            decimal.Decimal `json:"interest"`
	Prepayment          decimal.Decimal `json:"prepayment"`
	EndingBalance       decimal.Decimal `json:"endingBalance"`
	CumulativeInterest  decimal.Decimal `json:"cumulativeInterest"`
	CumulativePrincipal decimal.Decimal `json:"cumulativePrincipal"`
	AnnualRatePercent   decimal.Decimal `json:"annualRatePercent"`
	Moratorium          bool            `json:"moratorium,omitempty"`
}

// FiscalYearDTO aggregates one April-March financial year. Months lists the
// schedule months that fall in it.
type FiscalYearDTO struct {
	Label          string          `json:"label"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Prepayment     decimal.Decimal `json:"prepayment"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Months         []int           `json:"months"`
}

// =============================================================================
// AFFORDABILITY
// =============================================================================

// AffordabilityDTO is an affordability estimate plus a ready-to-calculate
// rate-mode form for the suggested loan.
type AffordabilityDTO struct {
	DisposableIncome  decimal.Decimal  `json:"disposableIncome"`
	SafeEMI           decimal.Decimal  `json:"safeEmi"`
	LoanAmount        decimal.Decimal  `json:"loanAmount"`
	TenureMonths      int              `json:"tenureMonths"`
	AnnualRatePercent decimal.Decimal  `json:"annualRatePercent"`
	Form              factory.LoanJSON `json:"form"`
}

// =============================================================================
// PROFILES
// =============================================================================

// ProfileRequest creates or updates a saved profile.
type ProfileRequest struct {
	Name   string          `json:"name"`
	Inputs json.RawMessage `json:"inputs"`
}

// ProfileDTO represents a saved profile in API responses.
type ProfileDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SolveFor  string          `json:"solveFor"`
	Inputs    json.RawMessage `json:"inputs"`
	Version   int             `json:"version"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"` // home, vehicle, education
	Form        factory.LoanJSON `json:"form"`
}

// LoadScenarioRequest selects a scenario to save as a profile.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func rate(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).RoundBank(4)
}

func toCalculationDTO(r *loan.Result) CalculationDTO {
	dto := CalculationDTO{
		Mode:                   r.Mode,
		Principal:              report.Money(r.Principal),
		CalculatedRatePercent:  rate(r.CalculatedRatePercent),
		CalculatedEMI:          report.Money(r.CalculatedEMI),
		CalculatedTenureMonths: r.CalculatedTenureMonths,
		MoratoriumMonths:       r.MoratoriumMonths,
		CapitalizedInterest:    report.Money(r.CapitalizedInterest),
		RepaymentMonths:        r.RepaymentMonths,
		TotalInterest:          report.Money(r.TotalInterest),
		TotalPayment:           report.Money(r.TotalPayment),
		BaselineInterest:       report.Money(r.BaselineInterest),
		InterestSaved:          report.Money(r.InterestSaved),
		TenureReducedMonths:    r.TenureReducedMonths,
		Notices:                r.Notices,
		MonthlySchedule:        make([]ScheduleRowDTO, len(r.MonthlySchedule)),
		FinancialYears:         make([]FiscalYearDTO, len(r.FinancialYears)),
	}
	if !r.LoanEndDate.IsZero() {
		dto.LoanEndDate = r.LoanEndDate.Format(factory.DateLayout)
	}

	for i, row := range r.MonthlySchedule {
		dto.MonthlySchedule[i] = ScheduleRowDTO{
			Month:               row.Month,
			Date:                row.Date.Format(factory.DateLayout),
			BeginningBalance:    report.Money(row.BeginningBalance),
			EMI:                 report.Money(row.EMI),
			Principal:           report.Money(row.Principal),
			Interest:            report.Money(row.Interest),
			Prepayment:          report.Money(row.Prepayment),
			EndingBalance:       report.Money(row.EndingBalance),
			CumulativeInterest:  report.Money(row.CumulativeInterest),
			CumulativePrincipal: report.Money(row.CumulativePrincipal),
			AnnualRatePercent:   rate(row.AnnualRatePercent),
			Moratorium:          row.Moratorium,
		}
	}

	for i, b := range r.FinancialYears {
		months := make([]int, len(b.Rows))
		for j, row := range b.Rows {
			months[j] = row.Month
		}
		dto.FinancialYears[i] = FiscalYearDTO{
			Label:          b.Label,
			Start:          b.Start.Format(factory.DateLayout),
			End:            b.End.Format(factory.DateLayout),
			Principal:      report.Money(b.Principal),
			Interest:       report.Money(b.Interest),
			Prepayment:     report.Money(b.Prepayment),
			ClosingBalance: report.Money(b.ClosingBalance),
			Months:         months,
		}
	}
	return dto
}

func toAffordabilityDTO(est affordability.Estimate, start time.Time) AffordabilityDTO {
	return AffordabilityDTO{
		DisposableIncome:  est.DisposableIncome.RoundBank(2),
		SafeEMI:           est.SafeEMI,
		LoanAmount:        est.LoanAmount,
		TenureMonths:      est.TenureMonths,
		AnnualRatePercent: est.AnnualRatePercent,
		Form:              factory.FromEstimate(est, start),
	}
}

func toProfileDTO(p *store.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID,
		Name:      p.Name,
		SolveFor:  p.SolveFor,
		Inputs:    json.RawMessage(p.InputsJSON),
		Version:   p.Version,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
