package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/platform/middleware"
	policyModel "motorcover/internal/policy/models"
	"motorcover/internal/transport/http/shared"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
)

// Years outside this range are treated as input errors at the boundary, not
// as dates the core should reason about.
const (
	minPolicyYear = 1900
	maxPolicyYear = 2200
)

// Service defines the policy operations the handler needs.
type Service interface {
	IsCovered(ctx context.Context, carID int64, date dates.Date) (bool, error)
	ListByCar(ctx context.Context, carID int64) ([]policyModel.InsurancePolicy, error)
	Create(ctx context.Context, carID int64, provider string, start, end dates.Date) (policyModel.InsurancePolicy, error)
}

// Handler serves coverage validation and policy management routes.
type Handler struct {
	policies Service
	logger   *slog.Logger
}

// New creates a policy Handler.
func New(policies Service, logger *slog.Logger) *Handler {
	return &Handler{policies: policies, logger: logger}
}

// Register adds the policy routes to the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cars/{carID}/insurance-valid", h.handleInsuranceValid)
	r.Get("/api/cars/{carID}/policies", h.handleListPolicies)
	r.Post("/api/cars/{carID}/policies", h.handleCreatePolicy)
}

// CreatePolicyRequest is the POST body for policy creation. Dates arrive as
// YYYY-MM-DD strings so malformed values fail validation, not JSON decoding.
type CreatePolicyRequest struct {
	Provider  string `json:"provider,omitempty"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// InsuranceValidityResponse answers "is this car insured on date D".
type InsuranceValidityResponse struct {
	CarID int64  `json:"carId"`
	Date  string `json:"date"`
	Valid bool   `json:"valid"`
}

func (h *Handler) handleInsuranceValid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "date parameter is required, use YYYY-MM-DD format"))
		return
	}
	date, err := parseBoundedDate(raw)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	valid, err := h.policies.IsCovered(ctx, carID, date)
	if err != nil {
		h.writeServiceError(ctx, w, err, "coverage check failed")
		return
	}
	shared.WriteJSON(w, http.StatusOK, InsuranceValidityResponse{
		CarID: carID,
		Date:  date.String(),
		Valid: valid,
	})
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	policies, err := h.policies.ListByCar(ctx, carID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list policies")
		return
	}
	if policies == nil {
		policies = []policyModel.InsurancePolicy{}
	}
	shared.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	start, err := parseBoundedDate(req.StartDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid start date, use YYYY-MM-DD format"))
		return
	}
	end, err := parseBoundedDate(req.EndDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid end date, use YYYY-MM-DD format"))
		return
	}

	policy, err := h.policies.Create(ctx, carID, req.Provider, start, end)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create policy")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, policy)
}

// writeServiceError logs unexpected failures and renders the coded envelope.
// Validation, not-found, and conflict outcomes pass through untouched.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeConflict:
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}

func carIDParam(r *http.Request) (int64, error) {
	carID, err := strconv.ParseInt(chi.URLParam(r, "carID"), 10, 64)
	if err != nil || carID <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "car id must be a positive integer")
	}
	return carID, nil
}

func parseBoundedDate(raw string) (dates.Date, error) {
	date, err := dates.Parse(raw)
	if err != nil {
		return dates.Date{}, dErrors.Newf(dErrors.CodeValidation, "invalid date %q, use YYYY-MM-DD format", raw)
	}
	if date.Year() < minPolicyYear || date.Year() > maxPolicyYear {
		return dates.Date{}, dErrors.Newf(dErrors.CodeValidation, "invalid date: year must be between %d and %d", minPolicyYear, maxPolicyYear)
	}
	return date, nil
}
