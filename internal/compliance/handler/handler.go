package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/platform/middleware/operator"
	"fleetgate/pkg/requestcontext"
)

// Service defines the compliance operations the transport layer needs.
type Service interface {
	Verify(ctx context.Context, registrationNumber, operatorID string) (domain.ComplianceDecision, error)
	Decision(ctx context.Context, registrationNumber, operatorID string) (domain.ComplianceDecision, error)
	Biddable(ctx context.Context, registrationNumber, operatorID string) (bool, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/vehicles/{rc}/verify", h.HandleVerify)
	r.Get("/vehicles/{rc}/compliance", h.HandleDecision)
	r.Get("/vehicles/{rc}/biddable", h.HandleBiddable)
}

// HandleVerify handles POST /vehicles/{rc}/verify. It fetches the registry
// record, runs the rule engine, and returns the freshly cached verdict.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	rc := chi.URLParam(r, "rc")

	decision, err := h.service.Verify(ctx, rc, operatorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"registration_number", rc,
			"operator_id", operatorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "vehicle verified",
		"request_id", requestcontext.RequestID(ctx),
		"registration_number", decision.RegistrationNumber,
		"operator_id", operatorID,
		"status", decision.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleDecision handles GET /vehicles/{rc}/compliance. It serves the cached
// verdict without contacting any registry provider.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	rc := chi.URLParam(r, "rc")

	decision, err := h.service.Decision(ctx, rc, operatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleBiddable handles GET /vehicles/{rc}/biddable.
func (h *Handler) HandleBiddable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	rc := chi.URLParam(r, "rc")

	biddable, err := h.service.Biddable(ctx, rc, operatorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, BiddableResponse{
		RegistrationNumber: rc,
		Biddable:           biddable,
	})
}
