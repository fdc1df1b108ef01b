// Package batch runs bulk (re)verification over the fleet: the nightly sweep
// that refreshes expired decisions, compares providers against each other,
// and opens tickets for anything that needs a human.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fleetgate/internal/audit"
	"fleetgate/internal/batch/metrics"
	"fleetgate/internal/batch/ports"
	"fleetgate/internal/compliance"
	complianceports "fleetgate/internal/compliance/ports"
	"fleetgate/internal/domain"
	"fleetgate/internal/normalizer"
	"fleetgate/internal/ticket"
)

// Config bounds a batch run.
type Config struct {
	ChunkSize   int
	Concurrency int
}

// DefaultConfig returns the reference batch limits.
func DefaultConfig() Config {
	return Config{ChunkSize: 100, Concurrency: 10}
}

// Result aggregates one batch run. Per-vehicle failures land in Errors; they
// never abort the run.
type Result struct {
	TotalProcessed int
	Successful     int
	Failed         int
	TicketsCreated int
	Errors         []string
}

// Worker orchestrates bulk verification. It owns no business rules itself:
// fetching is the registry client's job, deciding is the compliance
// service's, and the worker only sequences them and opens tickets.
type Worker struct {
	source     ports.VehicleSource
	verifier   compliance.Verifier
	snapshots  complianceports.SnapshotStore
	compliance *compliance.Service
	tickets    *ticket.Service

	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
	now       func() time.Time
}

// Option configures optional Worker collaborators.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithMetrics sets the worker metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithPublisher sets the audit publisher.
func WithPublisher(p audit.Publisher) Option {
	return func(w *Worker) { w.publisher = p }
}

// WithClock overrides the worker clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// NewWorker wires a Worker.
func NewWorker(
	source ports.VehicleSource,
	verifier compliance.Verifier,
	snapshots complianceports.SnapshotStore,
	complianceSvc *compliance.Service,
	tickets *ticket.Service,
	cfg Config,
	opts ...Option,
) *Worker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	w := &Worker{
		source:     source,
		verifier:   verifier,
		snapshots:  snapshots,
		compliance: complianceSvc,
		tickets:    tickets,
		cfg:        cfg,
		logger:     slog.New(slog.DiscardHandler),
		publisher:  audit.NopPublisher{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes one batch verification pass. The returned error covers only
// run-level failures (the vehicle selection query); everything per-vehicle is
// aggregated into the Result.
func (w *Worker) Run(ctx context.Context) (Result, error) {
	start := w.now()
	candidates, err := w.source.DueForVerification(ctx, start)
	if err != nil {
		return Result{}, fmt.Errorf("select vehicles due for verification: %w", err)
	}
	w.logger.InfoContext(ctx, "batch run starting",
		"candidates", len(candidates), "chunk_size", w.cfg.ChunkSize, "concurrency", w.cfg.Concurrency)

	var result Result
	var mu sync.Mutex

	for offset := 0; offset < len(candidates); offset += w.cfg.ChunkSize {
		if ctx.Err() != nil {
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("batch aborted: %v", ctx.Err()))
			mu.Unlock()
			break
		}

		end := min(offset+w.cfg.ChunkSize, len(candidates))
		chunk := candidates[offset:end]

		g, chunkCtx := errgroup.WithContext(ctx)
		g.SetLimit(w.cfg.Concurrency)
		for _, candidate := range chunk {
			g.Go(func() error {
				outcome := w.processVehicle(chunkCtx, candidate)

				mu.Lock()
				defer mu.Unlock()
				result.TotalProcessed++
				result.TicketsCreated += outcome.ticketsCreated
				if outcome.err != "" {
					result.Failed++
					result.Errors = append(result.Errors, outcome.err)
					w.metrics.IncVehicle("failed")
				} else {
					result.Successful++
					w.metrics.IncVehicle("success")
				}
				// Per-vehicle failures are isolated: never an error here.
				return nil
			})
		}
		_ = g.Wait()
	}

	elapsed := w.now().Sub(start)
	w.metrics.IncRun()
	w.metrics.AddTickets(result.TicketsCreated)
	w.metrics.ObserveRun(elapsed)
	w.publish(ctx, audit.NewEvent(audit.EventBatchRunCompleted, "", "", map[string]any{
		"total_processed": result.TotalProcessed,
		"successful":      result.Successful,
		"failed":          result.Failed,
		"tickets_created": result.TicketsCreated,
	}))
	w.logger.InfoContext(ctx, "batch run finished",
		"total_processed", result.TotalProcessed,
		"successful", result.Successful,
		"failed", result.Failed,
		"tickets_created", result.TicketsCreated,
		"duration", elapsed)
	return result, nil
}

type vehicleOutcome struct {
	ticketsCreated int
	err            string
}

func (w *Worker) processVehicle(ctx context.Context, candidate ports.Candidate) (outcome vehicleOutcome) {
	rc := candidate.RegistrationNumber

	// One panicking vehicle must not take the batch down with it.
	defer func() {
		if r := recover(); r != nil {
			outcome.err = fmt.Sprintf("%s: panic: %v", rc, r)
		}
	}()

	resp := w.verifier.Verify(ctx, rc)
	// Failed fetches are recorded too; the audit trail shows the attempt.
	if err := w.snapshots.Append(ctx, rc, resp); err != nil {
		w.logger.WarnContext(ctx, "snapshot append failed", "registration_number", rc, "error", err)
	}
	if !resp.Success {
		outcome.err = fmt.Sprintf("%s: provider fetch failed: %s", rc, resp.Error)
		return outcome
	}

	if w.checkProviderMismatch(ctx, candidate, resp) {
		outcome.ticketsCreated++
	}

	decision, err := w.compliance.Evaluate(ctx, rc, candidate.OperatorID, resp)
	if err != nil {
		outcome.err = fmt.Sprintf("%s: compliance check failed: %v", rc, err)
		return outcome
	}

	if reason, ok := identityBlockReason(decision); ok {
		if w.openTicket(ctx, candidate, domain.TicketComplianceBlock, map[string]any{
			"status":       string(decision.Status),
			"reason_codes": decision.ReasonCodes,
			"trigger":      reason,
		}) {
			outcome.ticketsCreated++
		}
	}
	return outcome
}

// checkProviderMismatch compares the fresh response against the latest
// successful snapshot from a different provider on the material fields
// (vehicle category, GVW) and opens a PROVIDER_MISMATCH ticket when they
// disagree. Reports whether a ticket was opened.
func (w *Worker) checkProviderMismatch(ctx context.Context, candidate ports.Candidate, resp domain.ProviderResponse) bool {
	previous, err := w.snapshots.LatestSuccessFromOtherProvider(ctx, candidate.RegistrationNumber, resp.Provider)
	if err != nil {
		// No cross-provider history is the common case; anything else is
		// logged and skipped rather than failing the vehicle.
		return false
	}

	current := normalizer.Normalize(resp.RawPayload, resp.Provider)
	baseline := normalizer.Normalize(previous.RawPayload, previous.Provider)

	var mismatched []string
	if current.VehicleCategory != baseline.VehicleCategory {
		mismatched = append(mismatched, "vehicle_category")
	}
	if current.GVWKg != baseline.GVWKg {
		mismatched = append(mismatched, "gvw_kg")
	}
	if len(mismatched) == 0 {
		return false
	}

	return w.openTicket(ctx, candidate, domain.TicketProviderMismatch, map[string]any{
		"fields":            mismatched,
		"provider":          resp.Provider,
		"previous_provider": previous.Provider,
		"vehicle_category":  current.VehicleCategory,
		"previous_category": baseline.VehicleCategory,
		"gvw_kg":            current.GVWKg,
		"previous_gvw_kg":   baseline.GVWKg,
	})
}

func (w *Worker) openTicket(ctx context.Context, candidate ports.Candidate, ticketType domain.TicketType, payload map[string]any) bool {
	_, err := w.tickets.Create(ctx, ticket.CreateInput{
		Type:               ticketType,
		RegistrationNumber: candidate.RegistrationNumber,
		OperatorID:         candidate.OperatorID,
		Payload:            payload,
	})
	if err != nil {
		w.logger.WarnContext(ctx, "ticket creation failed",
			"registration_number", candidate.RegistrationNumber,
			"ticket_type", string(ticketType), "error", err)
		return false
	}
	return true
}

// identityBlockReason reports the first block reason that points at an
// identity problem (duplicate fingerprints, cross-provider mismatch); those
// need a reviewer, not just a BLOCKED cache row.
func identityBlockReason(decision domain.ComplianceDecision) (string, bool) {
	if decision.Status != domain.StatusBlocked {
		return "", false
	}
	for _, reason := range decision.ReasonCodes {
		if strings.HasPrefix(reason, "DUPLICATE_") || strings.HasPrefix(reason, "PROVIDER_MISMATCH") {
			return reason, true
		}
	}
	return "", false
}

func (w *Worker) publish(ctx context.Context, event audit.Event) {
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "audit publish failed", "event_type", string(event.Type), "error", err)
	}
}
