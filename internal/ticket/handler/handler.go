package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fleetgate/internal/domain"
	"fleetgate/internal/ticket"
	"fleetgate/internal/ticket/ports"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/requestcontext"
)

// Service defines the ticket operations the transport layer needs.
type Service interface {
	Create(ctx context.Context, input ticket.CreateInput) (domain.Ticket, error)
	Get(ctx context.Context, id string) (domain.Ticket, error)
	StartReview(ctx context.Context, id string) (domain.Ticket, error)
	Resolve(ctx context.Context, id, notes string) (domain.Ticket, error)
	List(ctx context.Context, filter ports.Filter) ([]domain.Ticket, error)
}

// Handler wires review-queue endpoints to the ticket service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ticket handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts ticket endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets", h.HandleCreate)
	r.Get("/tickets", h.HandleList)
	r.Get("/tickets/{id}", h.HandleGet)
	r.Post("/tickets/{id}/review", h.HandleStartReview)
	r.Post("/tickets/{id}/resolve", h.HandleResolve)
}

// HandleCreate handles POST /tickets.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, ticket.CreateInput{
		Type:               domain.TicketType(req.Type),
		Priority:           domain.TicketPriority(req.Priority),
		RegistrationNumber: req.RegistrationNumber,
		OperatorID:         req.OperatorID,
		Payload:            req.Payload,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ticket created",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", created.ID,
		"type", created.Type,
	)

	httputil.WriteJSON(w, http.StatusCreated, FromTicket(created))
}

// HandleGet handles GET /tickets/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTicket(t))
}

// HandleList handles GET /tickets with optional status, type, limit, and
// offset query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.Filter{
		Status: domain.TicketStatus(q.Get("status")),
		Type:   domain.TicketType(q.Get("type")),
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	tickets, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, FromTicket(t))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Tickets: items})
}

// HandleStartReview handles POST /tickets/{id}/review.
func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.StartReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTicket(t))
}

// HandleResolve handles POST /tickets/{id}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[ResolveRequest](w, r, h.logger)
	if !ok {
		return
	}

	resolved, err := h.service.Resolve(ctx, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ticket resolved",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", resolved.ID,
	)

	httputil.WriteJSON(w, http.StatusOK, FromTicket(resolved))
}
