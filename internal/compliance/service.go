package compliance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fleetgate/internal/audit"
	"fleetgate/internal/compliance/metrics"
	"fleetgate/internal/compliance/ports"
	"fleetgate/internal/domain"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/sentinel"
)

// Verifier fetches a vehicle's registry record with failover across
// providers. Satisfied by registry.Client.
type Verifier interface {
	Verify(ctx context.Context, registrationNumber string) domain.ProviderResponse
}

// Service is the verification front door: it fetches from the registry, runs
// the decision engine, persists the verdict, and emits audit events.
type Service struct {
	verifier  Verifier
	engine    *Engine
	decisions ports.DecisionStore
	context   ports.VehicleContextStore
	snapshots ports.SnapshotStore
	publisher audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       ports.Clock
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the service metrics.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher sets the audit publisher.
func WithPublisher(p audit.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithSnapshots enables appending each fetched provider response to the
// append-only snapshot log.
func WithSnapshots(store ports.SnapshotStore) ServiceOption {
	return func(s *Service) { s.snapshots = store }
}

// WithServiceClock overrides the service clock. Test hook.
func WithServiceClock(clock ports.Clock) ServiceOption {
	return func(s *Service) { s.now = clock }
}

// NewService wires a Service. Logger, metrics, and publisher default to
// no-ops so the zero wiring is usable in tests.
func NewService(verifier Verifier, engine *Engine, decisions ports.DecisionStore, contextStore ports.VehicleContextStore, opts ...ServiceOption) *Service {
	s := &Service{
		verifier:  verifier,
		engine:    engine,
		decisions: decisions,
		context:   contextStore,
		publisher: audit.NopPublisher{},
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("fleetgate/compliance"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs a full on-demand verification: registry fetch, rule chain,
// decision upsert. The returned error is a system failure only; blocked
// vehicles come back as a BLOCKED decision with reason codes.
func (s *Service) Verify(ctx context.Context, registrationNumber, operatorID string) (domain.ComplianceDecision, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.Verify",
		trace.WithAttributes(attribute.String("operator_id", operatorID)))
	defer span.End()

	start := s.now()
	registrationNumber = strings.ToUpper(strings.TrimSpace(registrationNumber))
	if registrationNumber == "" {
		return domain.ComplianceDecision{}, dErrors.New(dErrors.CodeBadRequest, "registration number is required")
	}
	if operatorID == "" {
		return domain.ComplianceDecision{}, dErrors.New(dErrors.CodeBadRequest, "operator id is required")
	}

	resp := s.verifier.Verify(ctx, registrationNumber)
	s.appendSnapshot(ctx, registrationNumber, resp)
	if !resp.Success {
		s.publish(ctx, audit.NewEvent(audit.EventVerificationFailed, registrationNumber, operatorID, map[string]any{
			"error": resp.Error,
		}))
		return domain.ComplianceDecision{}, dErrors.New(dErrors.CodeUnavailable, "registry verification unavailable")
	}

	decision, err := s.Evaluate(ctx, registrationNumber, operatorID, resp)
	if err != nil {
		return domain.ComplianceDecision{}, err
	}

	s.observe(decision, s.now().Sub(start))
	return decision, nil
}

// Evaluate runs the rule chain over an already-fetched provider response and
// persists the decision. The batch worker calls this directly so a bulk run
// fetches each vehicle exactly once.
func (s *Service) Evaluate(ctx context.Context, registrationNumber, operatorID string, resp domain.ProviderResponse) (domain.ComplianceDecision, error) {
	registrationNumber = strings.ToUpper(strings.TrimSpace(registrationNumber))

	vehicleCtx, err := s.context.VehicleContext(ctx, registrationNumber, operatorID)
	if err != nil {
		return domain.ComplianceDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "vehicle context lookup failed")
	}

	decision, err := s.engine.Check(ctx, CheckInput{
		RegistrationNumber: registrationNumber,
		OperatorID:         operatorID,
		Response:           resp,
		GPSLastPing:        vehicleCtx.GPSLastPing,
		IsTrailer:          vehicleCtx.IsTrailer,
		LinkedTractorRC:    vehicleCtx.LinkedTractorRC,
	})
	if err != nil {
		return domain.ComplianceDecision{}, err
	}

	if err := s.decisions.Upsert(ctx, decision); err != nil {
		return domain.ComplianceDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist decision")
	}

	s.publish(ctx, audit.NewEvent(audit.EventDecisionRecorded, registrationNumber, operatorID, map[string]any{
		"status":         string(decision.Status),
		"reason_codes":   decision.ReasonCodes,
		"classification": string(decision.Classification),
		"provider":       decision.LastVerification.Provider,
	}))
	s.logger.InfoContext(ctx, "compliance decision recorded",
		"registration_number", registrationNumber,
		"operator_id", operatorID,
		"status", string(decision.Status),
		"reason_count", len(decision.ReasonCodes),
		"provider", decision.LastVerification.Provider,
	)

	return decision, nil
}

// Decision returns the cached decision for a vehicle/operator pair.
// CodeNotFound when the vehicle has never been verified for that operator.
func (s *Service) Decision(ctx context.Context, registrationNumber, operatorID string) (domain.ComplianceDecision, error) {
	registrationNumber = strings.ToUpper(strings.TrimSpace(registrationNumber))

	decision, err := s.decisions.Get(ctx, registrationNumber, operatorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.ComplianceDecision{}, dErrors.New(dErrors.CodeNotFound, "no decision cached for vehicle")
		}
		return domain.ComplianceDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision lookup failed")
	}
	return *decision, nil
}

// Biddable reports whether the vehicle may take part in bidding right now: a
// fresh ALLOWED decision must exist.
func (s *Service) Biddable(ctx context.Context, registrationNumber, operatorID string) (bool, error) {
	decision, err := s.Decision(ctx, registrationNumber, operatorID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return decision.Biddable(s.now()), nil
}

func (s *Service) observe(decision domain.ComplianceDecision, elapsed time.Duration) {
	s.metrics.IncDecision(string(decision.Status))
	for _, reason := range decision.ReasonCodes {
		s.metrics.IncBlockReason(reason)
	}
	s.metrics.ObserveCheck(elapsed)
}

// appendSnapshot records the response in the audit log. Best-effort: losing
// one snapshot row must not fail the verification that produced it.
func (s *Service) appendSnapshot(ctx context.Context, registrationNumber string, resp domain.ProviderResponse) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Append(ctx, registrationNumber, resp); err != nil {
		s.logger.WarnContext(ctx, "snapshot append failed",
			"registration_number", registrationNumber, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event audit.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit publish failed", "event_type", string(event.Type), "error", err)
	}
}
