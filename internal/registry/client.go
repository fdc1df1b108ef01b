// Package registry implements the resilient multi-provider vehicle-registry
// client: ordered failover across providers, each wrapped with a circuit
// breaker, a per-minute request budget, and retry with exponential backoff.
// The client knows nothing about compliance semantics.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fleetgate/internal/audit"
	"fleetgate/internal/domain"
	"fleetgate/internal/registry/metrics"
	"fleetgate/internal/registry/ports"
)

// Config holds the per-provider resilience settings.
type Config struct {
	BreakerThreshold    int
	BreakerResetTimeout time.Duration
	RequestsPerMinute   int
	MaxRetries          int
	BaseBackoff         time.Duration
	MaxBackoff          time.Duration
}

// DefaultConfig returns the reference policy settings.
func DefaultConfig() Config {
	return Config{
		BreakerThreshold:    5,
		BreakerResetTimeout: 60 * time.Second,
		RequestsPerMinute:   60,
		MaxRetries:          3,
		BaseBackoff:         500 * time.Millisecond,
		MaxBackoff:          8 * time.Second,
	}
}

// providerState is the component-local resilience state for one provider.
// Counters use short-lived locks only; no lock is held across network calls.
type providerState struct {
	adapter ports.ProviderAdapter
	breaker *breaker
	limiter *windowLimiter
}

// Client fans a verification request across the ordered provider list and
// returns the first success.
type Client struct {
	states  []*providerState
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	// recorder receives every attempt for audit logging.
	recorder func(domain.ProviderResponse)

	publisher audit.Publisher

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures the Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithAttemptRecorder registers a sink that receives every provider attempt,
// including circuit-open short-circuits, for the audit trail.
func WithAttemptRecorder(fn func(domain.ProviderResponse)) Option {
	return func(c *Client) { c.recorder = fn }
}

// WithPublisher registers an audit publisher for provider health events.
func WithPublisher(p audit.Publisher) Option {
	return func(c *Client) { c.publisher = p }
}

// New creates a Client over the ordered provider list (primary first).
func New(providers []ports.ProviderAdapter, cfg Config, opts ...Option) (*Client, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider adapter is required")
	}

	c := &Client{
		cfg:    cfg,
		tracer: otel.Tracer("fleetgate/registry"),
		sleep:  sleepContext,
	}
	for _, p := range providers {
		c.states = append(c.states, &providerState{
			adapter: p,
			breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerResetTimeout),
			limiter: newWindowLimiter(cfg.RequestsPerMinute, time.Minute),
		})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Verify fetches the vehicle record, failing over through the provider list.
// It always returns a ProviderResponse; when every provider is exhausted the
// response is a synthetic failure rather than an error.
func (c *Client) Verify(ctx context.Context, registrationNumber string) domain.ProviderResponse {
	ctx, span := c.tracer.Start(ctx, "registry.Verify",
		trace.WithAttributes(attribute.String("vehicle.rc", registrationNumber)))
	defer span.End()

	for _, state := range c.states {
		tag := state.adapter.Tag()

		if !state.breaker.Allow() {
			resp := domain.ProviderResponse{
				Provider:  tag,
				Success:   false,
				Timestamp: time.Now().UTC(),
				Error:     "circuit open",
			}
			c.record(resp)
			c.metrics.IncAttempt(tag, "circuit_open")
			c.logDebug(ctx, "provider skipped, circuit open", "provider", tag, "rc", registrationNumber)
			continue
		}

		resp, err := c.attemptWithRetry(ctx, state, registrationNumber)
		if err == nil {
			state.breaker.RecordSuccess()
			span.SetAttributes(attribute.String("registry.provider", tag))
			return resp
		}

		wasOpen := state.breaker.IsOpen()
		state.breaker.RecordFailure()
		if !wasOpen && state.breaker.IsOpen() {
			c.metrics.IncCircuitOpen(tag)
			c.logWarn(ctx, "provider circuit opened", "provider", tag, "rc", registrationNumber)
			c.publish(ctx, audit.NewEvent(audit.EventProviderCircuitOpen, "", "", map[string]any{
				"provider": tag,
			}))
		}

		if ctx.Err() != nil {
			break
		}
	}

	return domain.ProviderResponse{
		Provider:  "",
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error:     "all providers failed",
	}
}

// attemptWithRetry runs one provider's fetch with the retry/backoff policy.
// Only transient failures are retried. Every attempt consumes rate-limit
// budget and is recorded for audit.
func (c *Client) attemptWithRetry(ctx context.Context, state *providerState, registrationNumber string) (domain.ProviderResponse, error) {
	tag := state.adapter.Tag()
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, backoffDelay(c.cfg.BaseBackoff, c.cfg.MaxBackoff, attempt-1)); err != nil {
				return domain.ProviderResponse{}, err
			}
		}

		waitStart := time.Now()
		if err := state.limiter.Acquire(ctx); err != nil {
			return domain.ProviderResponse{}, err
		}
		c.metrics.ObserveRateLimitWait(tag, time.Since(waitStart))

		start := time.Now()
		payload, err := state.adapter.Fetch(ctx, registrationNumber)
		c.metrics.ObserveAttempt(tag, time.Since(start))

		resp := domain.ProviderResponse{
			Provider:      tag,
			Success:       err == nil,
			RawPayload:    payload,
			TransactionID: uuid.NewString(),
			Timestamp:     time.Now().UTC(),
		}
		if err != nil {
			resp.Error = err.Error()
		}
		c.record(resp)

		if err == nil {
			c.metrics.IncAttempt(tag, "success")
			return resp, nil
		}

		c.metrics.IncAttempt(tag, "failure")
		lastErr = err
		if !ports.IsTransient(err) {
			break
		}
	}
	return domain.ProviderResponse{}, lastErr
}

func (c *Client) record(resp domain.ProviderResponse) {
	if c.recorder != nil {
		c.recorder(resp)
	}
}

func (c *Client) publish(ctx context.Context, event audit.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logWarn(ctx, "audit publish failed", "event_type", string(event.Type), "error", err)
	}
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.DebugContext(ctx, msg, args...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, args...)
	}
}

// backoffDelay computes base * 2^attempt capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	d := base << uint(attempt)
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
