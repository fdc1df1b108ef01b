package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/platform/middleware/operator"
	"fleetgate/pkg/requestcontext"
)

// Service defines the trailer operations the transport layer needs.
type Service interface {
	Link(ctx context.Context, operatorID, trailerRC, tractorRC string) error
	Unlink(ctx context.Context, operatorID, trailerRC string) error
	CanBid(ctx context.Context, operatorID, trailerRC string) (bool, error)
	RecordPing(ctx context.Context, registrationNumber string, at time.Time) error
}

// Handler wires trailer pairing endpoints to the trailer service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a trailer handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts trailer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/trailers/link", h.HandleLink)
	r.Post("/trailers/unlink", h.HandleUnlink)
	r.Get("/trailers/{rc}/can-bid", h.HandleCanBid)
	r.Post("/vehicles/{rc}/gps-ping", h.HandlePing)
}

// HandleLink handles POST /trailers/link.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[LinkRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Link(ctx, operatorID, req.TrailerRC, req.TractorRC); err != nil {
		h.logger.ErrorContext(ctx, "trailer link failed",
			"request_id", requestcontext.RequestID(ctx),
			"operator_id", operatorID,
			"trailer_rc", req.TrailerRC,
			"tractor_rc", req.TractorRC,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LinkResponse{
		TrailerRC: req.TrailerRC,
		TractorRC: req.TractorRC,
		Linked:    true,
	})
}

// HandleUnlink handles POST /trailers/unlink. Unlinking an already unlinked
// trailer succeeds.
func (h *Handler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[UnlinkRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Unlink(ctx, operatorID, req.TrailerRC); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LinkResponse{
		TrailerRC: req.TrailerRC,
		Linked:    false,
	})
}

// HandleCanBid handles GET /trailers/{rc}/can-bid.
func (h *Handler) HandleCanBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operatorID, ok := operator.Require(w, r)
	if !ok {
		return
	}
	rc := chi.URLParam(r, "rc")

	canBid, err := h.service.CanBid(ctx, operatorID, rc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CanBidResponse{
		RegistrationNumber: rc,
		CanBid:             canBid,
	})
}

// HandlePing handles POST /vehicles/{rc}/gps-ping. The ping time is the
// request time, not a client-supplied value.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := chi.URLParam(r, "rc")

	if err := h.service.RecordPing(ctx, rc, requestcontext.Now(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
