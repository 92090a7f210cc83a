package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	fleetModel "motorcover/internal/fleet/models"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/platform/middleware"
	"motorcover/internal/transport/http/shared"
	dErrors "motorcover/pkg/domain-errors"
)

// Service defines the fleet operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]fleetModel.CarWithOwner, error)
}

// Handler serves the car listing routes.
type Handler struct {
	fleet   Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a fleet Handler.
func New(fleet Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{fleet: fleet, logger: logger, metrics: metrics}
}

// Register adds the fleet routes to the router. The shared middleware chain
// is applied by the transport router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/cars", h.handleListCars)
}

func (h *Handler) handleListCars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cars, err := h.fleet.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list cars",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list cars"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, cars)
}
