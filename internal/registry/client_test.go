package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fleetgate/internal/audit"
	"fleetgate/internal/domain"
	"fleetgate/internal/registry/mocks"
	"fleetgate/internal/registry/ports"
)

type fakeProvider struct {
	tag   string
	calls atomic.Int32
	fetch func(ctx context.Context, rc string) (map[string]any, error)
}

func (f *fakeProvider) Tag() string { return f.tag }

func (f *fakeProvider) Fetch(ctx context.Context, rc string) (map[string]any, error) {
	f.calls.Add(1)
	return f.fetch(ctx, rc)
}

func succeeding(tag string) *fakeProvider {
	return &fakeProvider{tag: tag, fetch: func(context.Context, string) (map[string]any, error) {
		return map[string]any{"rc_number": "KA01AB1234"}, nil
	}}
}

func failing(tag string, err error) *fakeProvider {
	return &fakeProvider{tag: tag, fetch: func(context.Context, string) (map[string]any, error) {
		return nil, err
	}}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	cfg.BaseBackoff = time.Millisecond
	cfg.RequestsPerMinute = 1000
	return cfg
}

func TestClient_PrimarySuccess(t *testing.T) {
	primary := succeeding("surepass")
	secondary := succeeding("invincible")
	c, err := New([]ports.ProviderAdapter{primary, secondary}, testConfig())
	require.NoError(t, err)

	resp := c.Verify(context.Background(), "KA01AB1234")

	assert.True(t, resp.Success)
	assert.Equal(t, "surepass", resp.Provider)
	assert.NotEmpty(t, resp.TransactionID)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Zero(t, secondary.calls.Load(), "secondary not consulted on primary success")
}

func TestClient_FailsOverToSecondary(t *testing.T) {
	primary := failing("surepass", errors.New("boom"))
	secondary := succeeding("invincible")
	c, err := New([]ports.ProviderAdapter{primary, secondary}, testConfig())
	require.NoError(t, err)

	resp := c.Verify(context.Background(), "KA01AB1234")

	assert.True(t, resp.Success)
	assert.Equal(t, "invincible", resp.Provider)
}

func TestClient_AllProvidersFailSyntheticResponse(t *testing.T) {
	c, err := New([]ports.ProviderAdapter{
		failing("surepass", errors.New("down")),
		failing("invincible", errors.New("down")),
	}, testConfig())
	require.NoError(t, err)

	resp := c.Verify(context.Background(), "KA01AB1234")

	assert.False(t, resp.Success)
	assert.Empty(t, resp.Provider)
	assert.Equal(t, "all providers failed", resp.Error)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	flaky := &fakeProvider{tag: "surepass", fetch: func(context.Context, string) (map[string]any, error) {
		if calls.Add(1) < 3 {
			return nil, ports.Transient(errors.New("timeout"))
		}
		return map[string]any{"rc_number": "KA01AB1234"}, nil
	}}

	cfg := testConfig()
	cfg.MaxRetries = 3
	c, err := New([]ports.ProviderAdapter{flaky}, cfg)
	require.NoError(t, err)

	resp := c.Verify(context.Background(), "KA01AB1234")

	assert.True(t, resp.Success)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NonTransientFailureNotRetried(t *testing.T) {
	primary := failing("surepass", errors.New("RC not found"))
	cfg := testConfig()
	cfg.MaxRetries = 3
	c, err := New([]ports.ProviderAdapter{primary}, cfg)
	require.NoError(t, err)

	c.Verify(context.Background(), "KA01XX0000")

	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestClient_CircuitOpensAndShortCircuits(t *testing.T) {
	primary := failing("surepass", ports.Transient(errors.New("down")))
	cfg := testConfig()
	cfg.BreakerThreshold = 3
	c, err := New([]ports.ProviderAdapter{primary}, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c.Verify(ctx, "KA01AB1234")
	}
	callsBeforeShortCircuit := primary.calls.Load()

	// Circuit is open: no network I/O on the next call.
	resp := c.Verify(ctx, "KA01AB1234")
	assert.False(t, resp.Success)
	assert.Equal(t, callsBeforeShortCircuit, primary.calls.Load())
}

type capturePublisher struct {
	events []audit.Event
}

func (p *capturePublisher) Publish(_ context.Context, event audit.Event) error {
	p.events = append(p.events, event)
	return nil
}

func TestClient_CircuitOpenPublishesAuditEvent(t *testing.T) {
	primary := failing("surepass", ports.Transient(errors.New("down")))
	publisher := &capturePublisher{}
	cfg := testConfig()
	cfg.BreakerThreshold = 2
	c, err := New([]ports.ProviderAdapter{primary}, cfg, WithPublisher(publisher))
	require.NoError(t, err)

	ctx := context.Background()
	c.Verify(ctx, "KA01AB1234")
	assert.Empty(t, publisher.events, "no event until the breaker trips")

	c.Verify(ctx, "KA01AB1234")
	require.Len(t, publisher.events, 1)
	assert.Equal(t, audit.EventProviderCircuitOpen, publisher.events[0].Type)
	assert.Equal(t, "surepass", publisher.events[0].Payload["provider"])

	// Short-circuited calls must not re-announce an already-open breaker.
	c.Verify(ctx, "KA01AB1234")
	assert.Len(t, publisher.events, 1)
}

func TestClient_CircuitHalfOpensAfterResetTimeout(t *testing.T) {
	primary := failing("surepass", ports.Transient(errors.New("down")))
	cfg := testConfig()
	cfg.BreakerThreshold = 1
	c, err := New([]ports.ProviderAdapter{primary}, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	c.Verify(ctx, "KA01AB1234")
	require.True(t, c.states[0].breaker.IsOpen())

	// Freeze then advance the breaker clock past the reset timeout.
	now := time.Now()
	c.states[0].breaker.now = func() time.Time { return now.Add(61 * time.Second) }

	primary.fetch = func(context.Context, string) (map[string]any, error) {
		return map[string]any{"rc_number": "KA01AB1234"}, nil
	}
	resp := c.Verify(ctx, "KA01AB1234")

	assert.True(t, resp.Success, "probe after reset timeout reaches the provider")
	assert.False(t, c.states[0].breaker.IsOpen())
}

func TestClient_RecorderSeesEveryAttempt(t *testing.T) {
	var recorded []domain.ProviderResponse
	primary := failing("surepass", ports.Transient(errors.New("down")))
	secondary := succeeding("invincible")

	cfg := testConfig()
	cfg.MaxRetries = 1
	c, err := New([]ports.ProviderAdapter{primary, secondary}, cfg,
		WithAttemptRecorder(func(r domain.ProviderResponse) { recorded = append(recorded, r) }))
	require.NoError(t, err)

	c.Verify(context.Background(), "KA01AB1234")

	// Two attempts against primary (initial + one retry), one against secondary.
	require.Len(t, recorded, 3)
	assert.Equal(t, "surepass", recorded[0].Provider)
	assert.False(t, recorded[0].Success)
	assert.Equal(t, "invincible", recorded[2].Provider)
	assert.True(t, recorded[2].Success)
}

func TestClient_ProviderOrderRespected(t *testing.T) {
	ctrl := gomock.NewController(t)

	primary := mocks.NewMockProviderAdapter(ctrl)
	primary.EXPECT().Tag().Return("surepass").AnyTimes()
	primary.EXPECT().Fetch(gomock.Any(), "KA01AB1234").Return(nil, errors.New("no record"))

	secondary := mocks.NewMockProviderAdapter(ctrl)
	secondary.EXPECT().Tag().Return("invincible").AnyTimes()
	secondary.EXPECT().Fetch(gomock.Any(), "KA01AB1234").
		Return(map[string]any{"regNo": "KA01AB1234"}, nil)

	c, err := New([]ports.ProviderAdapter{primary, secondary}, testConfig())
	require.NoError(t, err)

	resp := c.Verify(context.Background(), "KA01AB1234")
	assert.True(t, resp.Success)
	assert.Equal(t, "invincible", resp.Provider)
}

func TestClient_RequiresProviders(t *testing.T) {
	_, err := New(nil, testConfig())
	assert.Error(t, err)
}
