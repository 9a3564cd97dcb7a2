/*
scenarios.go - Demo loans for testing and demonstrations

PURPOSE:

	Provides preset loan forms that exercise specific engine features.
	Loading a scenario saves its form as a profile, which can then be
	recalculated and exported like any user-entered loan.

AVAILABLE SCENARIOS:

	home-loan-emi:              50 lakh at 8.5% over 20 years, solve for EMI
	car-loan-with-prepayments:  one-time and annual part-payments
	education-loan-moratorium:  12-month moratorium before repayment
	floating-rate-home-loan:    two rate resets over the life of the loan
	reverse-rate:               known EMI and tenure, solve for the rate

USAGE VIA API:

	POST /api/scenarios/load
	{"scenarioId": "education-loan-moratorium"}

ADDING NEW SCENARIOS:
 1. Add an entry to the 'scenarios' slice with ID, name, description, form
 2. Keep the start date fixed so schedules stay reproducible

SEE ALSO:
  - handlers.go: profile endpoints
  - factory/loan.go: form format
*/
package api

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/hrsagar28/loan-calculator-app/factory"
	"github.com/hrsagar28/loan-calculator-app/store"
	"go.uber.org/zap"
)

// scenarioStartDate anchors every preset.
const scenarioStartDate = "2025-04-01"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "home-loan-emi",
		Name:        "Home Loan EMI",
		Description: "50 lakh home loan at 8.5% for 20 years",
		Category:    "home",
		Form: factory.LoanJSON{
			SolveFor:          "emi",
			Principal:         "50,00,000",
			AnnualRatePercent: "8.5",
			TenureYears:       "20",
			StartDate:         scenarioStartDate,
			PaymentDay:        "5",
			CompoundingPeriod: "monthly",
		},
	},
	{
		ID:          "car-loan-with-prepayments",
		Name:        "Car Loan with Prepayments",
		Description: "Bonus-funded one-time prepayment plus annual part-payments",
		Category:    "vehicle",
		Form: factory.LoanJSON{
			SolveFor:          "emi",
			Principal:         "8,00,000",
			AnnualRatePercent: "9.25",
			TenureYears:       "5",
			StartDate:         scenarioStartDate,
			PaymentDay:        "10",
			CompoundingPeriod: "monthly",
			Prepayments: []factory.PrepaymentJSON{
				{Amount: "75,000", TriggerMonth: "12", Frequency: "oneTime"},
				{Amount: "25,000", TriggerMonth: "24", Frequency: "annually"},
			},
		},
	},
	{
		ID:          "education-loan-moratorium",
		Name:        "Education Loan with Moratorium",
		Description: "Repayment starts after a 12-month study moratorium; interest capitalizes",
		Category:    "education",
		Form: factory.LoanJSON{
			SolveFor:          "emi",
			Principal:         "15,00,000",
			AnnualRatePercent: "10.5",
			TenureYears:       "7",
			StartDate:         scenarioStartDate,
			PaymentDay:        "5",
			CompoundingPeriod: "monthly",
			MoratoriumMonths:  "12",
		},
	},
	{
		ID:          "floating-rate-home-loan",
		Name:        "Floating-Rate Home Loan",
		Description: "Rate rises in year 2 and eases in year 4; EMI stays fixed so tenure moves",
		Category:    "home",
		Form: factory.LoanJSON{
			SolveFor:          "emi",
			Principal:         "40,00,000",
			AnnualRatePercent: "8.4",
			TenureYears:       "15",
			StartDate:         scenarioStartDate,
			PaymentDay:        "5",
			CompoundingPeriod: "monthly",
			VariableRates: []factory.RateChangeJSON{
				{EffectiveMonth: "13", NewAnnualRatePercent: "9.15"},
				{EffectiveMonth: "37", NewAnnualRatePercent: "8.75"},
			},
		},
	},
	{
		ID:          "reverse-rate",
		Name:        "What Rate Am I Paying?",
		Description: "10 lakh repaid at 12,133 a month for 10 years; solve for the rate",
		Category:    "home",
		Form: factory.LoanJSON{
			SolveFor:          "rate",
			Principal:         "10,00,000",
			EMI:               "12,133",
			TenureYears:       "10",
			StartDate:         scenarioStartDate,
			PaymentDay:        "5",
			CompoundingPeriod: "monthly",
		},
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario saves a scenario's form as a new profile.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req LoadScenarioRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, found := findScenario(req.ScenarioID)
	if !found {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	inputs, err := json.Marshal(s.Form)
	if err != nil {
		h.writeFailure(w, "Failed to encode scenario", err)
		return
	}

	created, err := h.Store.CreateProfile(r.Context(), store.Profile{
		Name:       s.Name,
		SolveFor:   s.Form.SolveFor,
		InputsJSON: string(inputs),
	})
	profileOpsTotal.WithLabelValues("load_scenario", outcome(err)).Inc()
	if err != nil {
		h.writeFailure(w, "Failed to load scenario", err)
		return
	}

	h.logger.Info("scenario loaded", zap.String("scenario", s.ID), zap.String("profile", created.ID))
	writeJSON(w, http.StatusCreated, toProfileDTO(created))
}
