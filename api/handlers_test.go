/*
handlers_test.go - HTTP tests for the calculation, export, affordability,
profile and health endpoints. Requests go through the full router so
routing, middleware and status mapping are covered together.
*/
package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/hrsagar28/loan-calculator-app/report"
	"github.com/hrsagar28/loan-calculator-app/store"
	"github.com/hrsagar28/loan-calculator-app/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

const emiForm = `{
	"solveFor": "emi",
	"principal": "10,00,000",
	"annualRatePercent": 8,
	"tenureYears": 10,
	"startDate": "2025-01-01",
	"paymentDay": 5,
	"clientName": "Acme Traders"
}`

type testServer struct {
	handler *Handler
	router  http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	h := NewHandler(loan.NewCalculator(), memory.New(), zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	return &testServer{handler: h, router: NewRouter(h, []string{"http://localhost:5173"})}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_SolveForEMI(t *testing.T) {
	// GIVEN: A 10 lakh loan at 8% for 10 years
	s := setupTestServer(t)

	// WHEN: Calculating
	rec := s.do(t, http.MethodPost, "/api/calculate", emiForm)

	// THEN: The EMI is solved and amounts are rounded to 2 places
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decode[CalculationDTO](t, rec)
	assert.Equal(t, "emi", dto.Mode)
	assert.Equal(t, "12132.76", dto.CalculatedEMI.String())
	assert.Equal(t, 120, dto.CalculatedTenureMonths)
	assert.Len(t, dto.MonthlySchedule, 120)
	assert.Equal(t, "2025-01-05", dto.MonthlySchedule[0].Date)
	assert.True(t, dto.MonthlySchedule[119].EndingBalance.IsZero())
	assert.Equal(t, "2034-12-05", dto.LoanEndDate)
	assert.NotEmpty(t, dto.FinancialYears)
	assert.True(t, dto.TotalPayment.Sub(dto.TotalInterest).Sub(dto.Principal).Abs().LessThanOrEqual(decimal.RequireFromString("0.02")))
}

func TestCalculate_SolveForRate(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/calculate", `{
		"solveFor": "rate", "principal": 1000000, "emi": "12,133",
		"tenureMonths": 120, "startDate": "2025-01-01"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decode[CalculationDTO](t, rec)
	assert.InDelta(t, 8.0, dto.CalculatedRatePercent.InexactFloat64(), 0.01)
}

func TestCalculate_ValidationError(t *testing.T) {
	// GIVEN: A form without a principal
	s := setupTestServer(t)

	// WHEN: Calculating
	rec := s.do(t, http.MethodPost, "/api/calculate", `{
		"solveFor": "emi", "annualRatePercent": 8, "tenureYears": 10, "startDate": "2025-01-01"
	}`)

	// THEN: 400 naming the field
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "principal", resp.Field)
	assert.NotEmpty(t, resp.Error)
}

func TestCalculate_UnparsableFieldIsValidationError(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/calculate", `{
		"solveFor": "emi", "principal": "ten lakh", "annualRatePercent": 8, "tenureYears": 10
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "principal", resp.Field)
	assert.Equal(t, "invalid number format", resp.Error)
}

func TestCalculate_MalformedJSON(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/calculate", `{"solveFor": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[ErrorResponse](t, rec).Error)
}

func TestCalculate_InfeasibleLoan(t *testing.T) {
	// GIVEN: An EMI below the first month's interest (8% on 10 lakh is 6,667)
	s := setupTestServer(t)

	// WHEN: Solving for tenure
	rec := s.do(t, http.MethodPost, "/api/calculate", `{
		"solveFor": "tenure", "principal": 1000000, "annualRatePercent": 8,
		"emi": 5000, "startDate": "2025-01-01"
	}`)

	// THEN: Well-formed but infeasible
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_CSV(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/export?format=csv", emiForm)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "amortization_schedule-Acme_Traders-2025-03-15.csv", attachmentName(t, rec))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Month,Date,Beginning Balance"))
}

func TestExport_PDF(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/export?format=pdf", emiForm)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestExport_UnsupportedFormat(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/export?format=docx", emiForm)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_CalculationErrorIsNotAFile(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/export?format=csv", `{"solveFor": "emi"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

// =============================================================================
// AFFORDABILITY
// =============================================================================

func TestAffordability(t *testing.T) {
	// GIVEN: 1 lakh income, 40,000 expenses, 20 years at 8.5%
	s := setupTestServer(t)

	// WHEN: Sizing the loan
	rec := s.do(t, http.MethodPost, "/api/affordability", `{
		"monthlyIncome": "1,00,000", "monthlyExpenses": 40000,
		"tenureYears": 20, "interestRate": 8.5
	}`)

	// THEN: 45% of disposable income services a loan rounded to 1,000
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decode[AffordabilityDTO](t, rec)
	assert.Equal(t, "60000", dto.DisposableIncome.String())
	assert.Equal(t, "27000", dto.SafeEMI.String())
	assert.Equal(t, 240, dto.TenureMonths)
	assert.True(t, dto.LoanAmount.Mod(decimal.NewFromInt(1000)).IsZero())
	assert.True(t, dto.LoanAmount.GreaterThan(decimal.NewFromInt(3_000_000)))

	// AND: The attached form calculates as a rate-mode loan near the assumed rate
	form, err := json.Marshal(dto.Form)
	require.NoError(t, err)
	assert.Equal(t, "rate", dto.Form.SolveFor)
	calc := s.do(t, http.MethodPost, "/api/calculate", string(form))
	require.Equal(t, http.StatusOK, calc.Code, calc.Body.String())
	assert.InDelta(t, 8.5, decode[CalculationDTO](t, calc).CalculatedRatePercent.InexactFloat64(), 0.05)
}

func TestAffordability_IncomeNotAboveExpenses(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/affordability", `{
		"monthlyIncome": 30000, "monthlyExpenses": 30000, "tenureYears": 10, "interestRate": 9
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "monthlyIncome", decode[ErrorResponse](t, rec).Field)
}

// =============================================================================
// PROFILES
// =============================================================================

func TestProfiles_Lifecycle(t *testing.T) {
	s := setupTestServer(t)

	// GIVEN: A saved profile
	rec := s.do(t, http.MethodPost, "/api/profiles", `{"name": "Home Loan", "inputs": `+emiForm+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ProfileDTO](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "emi", created.SolveFor)
	assert.Equal(t, 1, created.Version)

	// WHEN: Reading it back, alone and in the list
	rec = s.do(t, http.MethodGet, "/api/profiles/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Home Loan", decode[ProfileDTO](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProfileDTO](t, rec), 1)

	// WHEN: Recalculating the saved inputs
	rec = s.do(t, http.MethodPost, "/api/profiles/"+created.ID+"/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "12132.76", decode[CalculationDTO](t, rec).CalculatedEMI.String())

	// WHEN: Updating to a tenure-mode form
	rec = s.do(t, http.MethodPut, "/api/profiles/"+created.ID, `{
		"name": "Home Loan (tenure)",
		"inputs": {"solveFor": "tenure", "principal": 1000000, "annualRatePercent": 8, "emi": 20000, "startDate": "2025-01-01"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProfileDTO](t, rec)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "tenure", updated.SolveFor)

	// WHEN: Exporting it without a client name in the form
	rec = s.do(t, http.MethodGet, "/api/profiles/"+created.ID+"/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Loan-Report-Home_Loan_(tenure)-2025-03-15.xlsx", attachmentName(t, rec))

	// WHEN: Deleting
	rec = s.do(t, http.MethodDelete, "/api/profiles/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: It is gone
	rec = s.do(t, http.MethodGet, "/api/profiles/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/profiles/"+created.ID+"/calculate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfiles_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"blank name", `{"name": "  ", "inputs": {"solveFor": "emi"}}`},
		{"missing inputs", `{"name": "Car"}`},
		{"inputs are not a form", `{"name": "Car", "inputs": [1, 2]}`},
		{"malformed body", `{"name": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/profiles", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestProfiles_UnknownID(t *testing.T) {
	s := setupTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/profiles/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/profiles/nope", "").Code)
	assert.Equal(t, http.StatusNotFound,
		s.do(t, http.MethodPut, "/api/profiles/nope", `{"name": "x", "inputs": {"solveFor": "emi"}}`).Code)
}

// =============================================================================
// HEALTH, METRICS, STATUS MAPPING
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/calculate", emiForm).Code)
	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `loan_calculations_total{mode="emi",status="ok"}`)
	assert.Contains(t, rec.Body.String(), "loan_calculation_duration_seconds")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &loan.ValidationError{Field: "principal", Message: "required"}, http.StatusBadRequest},
		{"invalid profile", store.ErrInvalidProfile, http.StatusBadRequest},
		{"export format", report.ErrUnsupportedFormat, http.StatusBadRequest},
		{"missing profile", store.ErrProfileNotFound, http.StatusNotFound},
		{"emi below interest", &loan.EmiBelowInterestError{Month: 3}, http.StatusUnprocessableEntity},
		{"prepayment overflow", &loan.PrepaymentExceedsBalanceError{Month: 5}, http.StatusUnprocessableEntity},
		{"numeric", loan.ErrNumericDegeneracy, http.StatusUnprocessableEntity},
		{"store failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}
