package expiration

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/platform/middleware"
	"motorcover/internal/transport/http/shared"
	dErrors "motorcover/pkg/domain-errors"
)

// Handler exposes the operator hook that forces one synchronous sweep tick,
// used by tests and on-call to avoid waiting out the scheduler period.
type Handler struct {
	sweeper *Sweeper
	logger  *slog.Logger
}

// NewHandler creates the sweep trigger handler.
func NewHandler(sweeper *Sweeper, logger *slog.Logger) *Handler {
	return &Handler{sweeper: sweeper, logger: logger}
}

// Register adds the trigger route to the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/internal/sweep", h.handleTriggerSweep)
}

func (h *Handler) handleTriggerSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recorded, err := h.sweeper.Tick(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual sweep failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "sweep failed"))
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, map[string]int{"recorded": recorded})
}
