package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	claimModel "motorcover/internal/claims/models"
	"motorcover/internal/platform/middleware"
	"motorcover/internal/transport/http/shared"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
)

// Service defines the claim operations the handler needs.
type Service interface {
	Create(ctx context.Context, carID int64, description string, amount float64, claimDate dates.Date) (claimModel.Claim, error)
	ListByCar(ctx context.Context, carID int64) ([]claimModel.Claim, error)
	History(ctx context.Context, carID int64) (claimModel.CarHistory, error)
}

// Handler serves claim and history routes.
type Handler struct {
	claims Service
	logger *slog.Logger
}

// New creates a claims Handler.
func New(claims Service, logger *slog.Logger) *Handler {
	return &Handler{claims: claims, logger: logger}
}

// Register adds the claim routes to the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cars/{carID}/claims", h.handleListClaims)
	r.Post("/api/cars/{carID}/claims", h.handleCreateClaim)
	r.Get("/api/cars/{carID}/history", h.handleHistory)
}

// CreateClaimRequest is the POST body for filing a claim.
type CreateClaimRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	ClaimDate   string  `json:"claimDate"`
}

func (h *Handler) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	claimDate, err := dates.Parse(req.ClaimDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid claim date, use YYYY-MM-DD format"))
		return
	}

	claim, err := h.claims.Create(ctx, carID, req.Description, req.Amount, claimDate)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create claim")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) handleListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	claims, err := h.claims.ListByCar(ctx, carID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list claims")
		return
	}
	if claims == nil {
		claims = []claimModel.Claim{}
	}
	shared.WriteJSON(w, http.StatusOK, claims)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID, err := carIDParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	history, err := h.claims.History(ctx, carID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to assemble history")
		return
	}
	shared.WriteJSON(w, http.StatusOK, history)
}

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
