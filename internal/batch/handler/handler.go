package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetgate/internal/batch"
	"fleetgate/pkg/platform/httputil"
	"fleetgate/pkg/requestcontext"
)

// Runner defines the batch operation the transport layer needs.
type Runner interface {
	Run(ctx context.Context) (batch.Result, error)
}

// Handler exposes an operational trigger for the re-verification sweep, for
// runs outside the nightly schedule.
type Handler struct {
	runner Runner
	logger *slog.Logger
}

// New constructs a batch handler with its dependencies.
func New(runner Runner, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// Register mounts the batch trigger on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/batch/run", h.HandleRun)
}

// RunResponse summarizes a completed sweep.
type RunResponse struct {
	TotalProcessed int      `json:"total_processed"`
	Successful     int      `json:"successful"`
	Failed         int      `json:"failed"`
	TicketsCreated int      `json:"tickets_created"`
	Errors         []string `json:"errors,omitempty"`
	DurationMs     int64    `json:"duration_ms"`
}

// HandleRun handles POST /batch/run. The sweep runs synchronously; callers
// triggering large fleets should set a generous client timeout.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	result, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch run failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RunResponse{
		TotalProcessed: result.TotalProcessed,
		Successful:     result.Successful,
		Failed:         result.Failed,
		TicketsCreated: result.TicketsCreated,
		Errors:         result.Errors,
		DurationMs:     time.Since(start).Milliseconds(),
	})
}
