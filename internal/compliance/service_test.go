package compliance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/audit"
	"fleetgate/internal/compliance/ports"
	"fleetgate/internal/compliance/store/decision"
	"fleetgate/internal/compliance/store/operator"
	"fleetgate/internal/domain"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/testutil"
)

type stubVerifier struct {
	response domain.ProviderResponse
}

func (v *stubVerifier) Verify(context.Context, string) domain.ProviderResponse {
	return v.response
}

type stubContextStore struct {
	ctx ports.VehicleContext
}

func (s *stubContextStore) VehicleContext(context.Context, string, string) (ports.VehicleContext, error) {
	return s.ctx, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturePublisher) Publish(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []audit.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T, response domain.ProviderResponse) (*Service, *decision.MemoryStore, *capturePublisher) {
	t.Helper()

	decisions := decision.NewMemoryStore()
	engine := NewEngine(decisions, operator.NewMemoryStore(), DefaultPolicy()).
		WithClock(func() time.Time { return testNow })
	publisher := &capturePublisher{}
	ping := testNow.Add(-time.Minute)

	svc := NewService(&stubVerifier{response: response}, engine, decisions,
		&stubContextStore{ctx: ports.VehicleContext{GPSLastPing: &ping}},
		WithPublisher(publisher),
		WithServiceClock(func() time.Time { return testNow }),
	)
	return svc, decisions, publisher
}

func successResponse() domain.ProviderResponse {
	return domain.ProviderResponse{
		Provider:      "surepass",
		Success:       true,
		RawPayload:    surepassPayload(nil),
		TransactionID: "txn-77",
		Timestamp:     testNow,
	}
}

func TestServiceVerify_PersistsDecision(t *testing.T) {
	svc, decisions, publisher := newTestService(t, successResponse())

	got, err := svc.Verify(context.Background(), "ka01ab1234", "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAllowed, got.Status)

	stored, err := decisions.Get(context.Background(), "KA01AB1234", "op-1")
	require.NoError(t, err)
	assert.Equal(t, got, *stored)

	assert.Equal(t, []audit.EventType{audit.EventDecisionRecorded}, publisher.types())
}

func TestServiceVerify_RegistryUnavailable(t *testing.T) {
	svc, _, publisher := newTestService(t, domain.ProviderResponse{
		Success: false,
		Error:   "all providers failed",
	})

	_, err := svc.Verify(context.Background(), "KA01AB1234", "op-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, []audit.EventType{audit.EventVerificationFailed}, publisher.types())
}

func TestServiceVerify_ValidatesArguments(t *testing.T) {
	svc, _, _ := newTestService(t, successResponse())

	_, err := svc.Verify(context.Background(), "  ", "op-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Verify(context.Background(), "KA01AB1234", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestServiceDecision_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, successResponse())

	_, err := svc.Decision(context.Background(), "KA99ZZ0000", "op-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestServiceBiddable(t *testing.T) {
	svc, decisions, _ := newTestService(t, successResponse())

	testutil.Given(t, "a vehicle that was never verified", func(t *testing.T) {
		ok, err := svc.Biddable(context.Background(), "KA01AB1234", "op-1")
		require.NoError(t, err)
		assert.False(t, ok, "no cached decision means not biddable, not an error")
	})

	testutil.When(t, "the vehicle passes verification", func(t *testing.T) {
		_, err := svc.Verify(context.Background(), "KA01AB1234", "op-1")
		require.NoError(t, err)

		ok, err := svc.Biddable(context.Background(), "KA01AB1234", "op-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	testutil.Then(t, "an expired cache entry stops being biddable even when ALLOWED", func(t *testing.T) {
		stale, err := decisions.Get(context.Background(), "KA01AB1234", "op-1")
		require.NoError(t, err)
		stale.CacheExpiresAt = testNow.Add(-time.Second)
		require.NoError(t, decisions.Upsert(context.Background(), *stale))

		ok, err := svc.Biddable(context.Background(), "KA01AB1234", "op-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
