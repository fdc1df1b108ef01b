// Package httptransport assembles the HTTP API from the feature handlers.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	batchhandler "fleetgate/internal/batch/handler"
	compliancehandler "fleetgate/internal/compliance/handler"
	tickethandler "fleetgate/internal/ticket/handler"
	trailerhandler "fleetgate/internal/trailer/handler"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/platform/middleware/admin"
	"fleetgate/pkg/platform/middleware/metadata"
	"fleetgate/pkg/platform/middleware/operator"
	"fleetgate/pkg/platform/middleware/requestid"
	"fleetgate/pkg/platform/middleware/requesttime"
)

// Handlers bundles the feature handlers mounted on the API.
type Handlers struct {
	Compliance *compliancehandler.Handler
	Trailer    *trailerhandler.Handler
	Ticket     *tickethandler.Handler
	Batch      *batchhandler.Handler
}

// NewRouter wires middleware and mounts all endpoints. Operator endpoints
// live under /v1; ticket review and the batch trigger require the admin
// token.
func NewRouter(h Handlers, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(operator.Middleware)
			h.Compliance.Register(r)
			h.Trailer.Register(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(adminToken, logger))
			h.Ticket.Register(r)
			h.Batch.Register(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
