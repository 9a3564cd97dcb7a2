/*
handlers.go - HTTP API handlers for the loan advisor

PURPOSE:
  Exposes the loan engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the factory (form parsing), the engine
  (calculation), the report package (export) and the profile store.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                   Calculate a loan form
    POST   /api/export?format=csv|pdf|xlsx  Calculate and download a report
    POST   /api/affordability               Size an affordable loan

  Profiles:
    GET    /api/profiles                    List saved profiles
    POST   /api/profiles                    Save a loan form
    GET    /api/profiles/{id}               Get a profile
    PUT    /api/profiles/{id}               Replace name and inputs
    DELETE /api/profiles/{id}               Delete a profile
    POST   /api/profiles/{id}/calculate     Recalculate saved inputs
    GET    /api/profiles/{id}/export        Download a report of saved inputs

  Scenarios:
    GET    /api/scenarios                   List demo loans
    POST   /api/scenarios/load              Save a demo loan as a profile

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Calculator: the stateless loan engine
  - Store: saved profiles (raw inputs only, results are always recomputed)
  - Factory: JSON form to loan.Request conversion

REQUEST FLOW:
  1. Read body (bounded)
  2. Parse form (factory); malformed JSON is a 400
  3. Calculate (engine); field-level problems surface as ValidationError
  4. Serialize response (DTOs round amounts at the boundary)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed input, unknown export format
  - 404: Profile or scenario not found
  - 422: Well-formed inputs describing an infeasible loan
  - 500: Store or rendering failures (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo loans
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/hrsagar28/loan-calculator-app/affordability"
	"github.com/hrsagar28/loan-calculator-app/factory"
	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/hrsagar28/loan-calculator-app/report"
	"github.com/hrsagar28/loan-calculator-app/store"
	"github.com/hrsagar28/loan-calculator-app/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Calculator *loan.Calculator
	Store      store.ProfileStore
	Factory    *factory.LoanFactory

	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a handler. A nil logger disables logging.
func NewHandler(calc *loan.Calculator, st store.ProfileStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Calculator: calc,
		Store:      st,
		Factory:    factory.NewLoanFactory(),
		logger:     logger,
		now:        time.Now,
	}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate runs one calculation.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	lj, ok := h.readForm(w, r)
	if !ok {
		return
	}

	result, err := h.calculate(r.Context(), h.Factory.FromJSON(lj))
	if err != nil {
		h.writeFailure(w, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(result))
}

// Export calculates a loan form and returns the report as a download.
// POST /api/export?format=pdf
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format", err)
		return
	}
	lj, ok := h.readForm(w, r)
	if !ok {
		return
	}
	h.export(r.Context(), w, format, lj, lj.ClientName)
}

// Affordability sizes the largest loan a household can service.
// POST /api/affordability
func (h *Handler) Affordability(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var aj factory.AffordabilityJSON
	if err := json.Unmarshal(body, &aj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := h.Factory.AffordabilityInput(aj)
	if err != nil {
		h.writeFailure(w, "Invalid affordability inputs", err)
		return
	}
	est, err := affordability.Calculate(in)
	if err != nil {
		h.writeFailure(w, "Invalid affordability inputs", err)
		return
	}
	writeJSON(w, http.StatusOK, toAffordabilityDTO(est, h.now()))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// ListProfiles returns all saved profiles.
// GET /api/profiles
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to list profiles", err)
		return
	}

	dtos := make([]ProfileDTO, len(profiles))
	for i := range profiles {
		dtos[i] = toProfileDTO(&profiles[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProfile saves a loan form under a name.
// POST /api/profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.readProfile(w, r)
	if !ok {
		return
	}

	created, err := h.Store.CreateProfile(r.Context(), p)
	profileOpsTotal.WithLabelValues("create", outcome(err)).Inc()
	if err != nil {
		h.writeFailure(w, "Failed to create profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileDTO(created))
}

// GetProfile returns one profile.
// GET /api/profiles/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, "Failed to get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// UpdateProfile replaces a profile's name and inputs.
// PUT /api/profiles/{id}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.readProfile(w, r)
	if !ok {
		return
	}
	p.ID = chi.URLParam(r, "id")

	updated, err := h.Store.UpdateProfile(r.Context(), p)
	profileOpsTotal.WithLabelValues("update", outcome(err)).Inc()
	if err != nil {
		h.writeFailure(w, "Failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(updated))
}

// DeleteProfile removes a profile.
// DELETE /api/profiles/{id}
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteProfile(r.Context(), chi.URLParam(r, "id"))
	profileOpsTotal.WithLabelValues("delete", outcome(err)).Inc()
	if err != nil {
		h.writeFailure(w, "Failed to delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CalculateProfile recalculates a profile's saved inputs.
// POST /api/profiles/{id}/calculate
func (h *Handler) CalculateProfile(w http.ResponseWriter, r *http.Request) {
	_, lj, ok := h.loadProfileForm(w, r)
	if !ok {
		return
	}

	result, err := h.calculate(r.Context(), h.Factory.FromJSON(lj))
	if err != nil {
		h.writeFailure(w, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(result))
}

// ExportProfile downloads a report of a profile's saved inputs.
// GET /api/profiles/{id}/export?format=xlsx
func (h *Handler) ExportProfile(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format", err)
		return
	}
	p, lj, ok := h.loadProfileForm(w, r)
	if !ok {
		return
	}

	client := lj.ClientName
	if client == "" {
		client = p.Name
	}
	h.export(r.Context(), w, format, lj, client)
}

// Health reports whether the store is reachable.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SHARED STEPS
// =============================================================================

// calculate runs the engine inside a span and records metrics.
func (h *Handler) calculate(ctx context.Context, req loan.Request) (*loan.Result, error) {
	mode := "unknown"
	if req.Mode != nil {
		mode = req.Mode.ModeName()
	}

	_, span := tracing.Tracer().Start(ctx, "loan.Calculate",
		trace.WithAttributes(attribute.String("loan.mode", mode)))
	defer span.End()

	start := time.Now()
	result, err := h.Calculator.Calculate(req)
	calculationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		calculationsTotal.WithLabelValues(mode, errorKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	calculationsTotal.WithLabelValues(mode, "ok").Inc()
	span.SetAttributes(
		attribute.Int("loan.schedule_months", len(result.MonthlySchedule)),
		attribute.Int("loan.repayment_months", result.RepaymentMonths),
	)
	return result, nil
}

func (h *Handler) export(ctx context.Context, w http.ResponseWriter, format report.Format, lj factory.LoanJSON, client string) {
	result, err := h.calculate(ctx, h.Factory.FromJSON(lj))
	if err != nil {
		h.writeFailure(w, "Calculation failed", err)
		return
	}

	_, span := tracing.Tracer().Start(ctx, "report.Render",
		trace.WithAttributes(attribute.String("report.format", string(format))))
	doc, err := report.Render(format, result, report.Meta{ClientName: client, GeneratedAt: h.now()})
	span.End()
	if err != nil {
		h.writeFailure(w, "Failed to render report", err)
		return
	}
	exportsTotal.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (factory.LoanJSON, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return factory.LoanJSON{}, false
	}
	lj, err := h.Factory.ParseForm(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return factory.LoanJSON{}, false
	}
	return lj, true
}

// readProfile decodes a ProfileRequest and checks that its inputs are a loan form.
func (h *Handler) readProfile(w http.ResponseWriter, r *http.Request) (store.Profile, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return store.Profile{}, false
	}
	var req ProfileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return store.Profile{}, false
	}
	if len(req.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, "Profile inputs are required", nil)
		return store.Profile{}, false
	}
	lj, err := h.Factory.ParseForm(req.Inputs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Profile inputs are not a loan form", err)
		return store.Profile{}, false
	}

	return store.Profile{
		Name:       strings.TrimSpace(req.Name),
		SolveFor:   strings.ToLower(strings.TrimSpace(lj.SolveFor)),
		InputsJSON: string(req.Inputs),
	}, true
}

func (h *Handler) loadProfileForm(w http.ResponseWriter, r *http.Request) (*store.Profile, factory.LoanJSON, bool) {
	p, err := h.Store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, "Failed to get profile", err)
		return nil, factory.LoanJSON{}, false
	}
	lj, err := h.Factory.ParseForm([]byte(p.InputsJSON))
	if err != nil {
		h.writeFailure(w, "Saved inputs are unreadable", err)
		return nil, factory.LoanJSON{}, false
	}
	return p, lj, true
}

// =============================================================================
// HELPERS
// =============================================================================

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return nil, false
	}
	return body, true
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case loan.IsValidation(err), errors.Is(err, store.ErrInvalidProfile), errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrProfileNotFound):
		return http.StatusNotFound
	case loan.IsInfeasible(err), loan.IsNumeric(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorKind labels a calculation failure for metrics.
func errorKind(err error) string {
	switch {
	case loan.IsValidation(err):
		return "invalid"
	case loan.IsInfeasible(err):
		return "infeasible"
	case loan.IsNumeric(err):
		return "numeric"
	default:
		return "error"
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// writeFailure writes err with its mapped status. Server-side failures are
// logged; client errors are not.
func (h *Handler) writeFailure(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err), zap.Int("status", status))
		writeError(w, status, message, err)
		return
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var verr *loan.ValidationError
	if errors.As(err, &verr) {
		resp.Error = verr.Message
		resp.Field = verr.Field
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

