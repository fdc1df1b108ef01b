package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"fleetgate/internal/domain"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/middleware/operator"
	"fleetgate/pkg/testutil"
)

type stubService struct {
	decision domain.ComplianceDecision
	err      error
	biddable bool

	lastRC       string
	lastOperator string
}

func (s *stubService) Verify(_ context.Context, rc, operatorID string) (domain.ComplianceDecision, error) {
	s.lastRC, s.lastOperator = rc, operatorID
	return s.decision, s.err
}

func (s *stubService) Decision(_ context.Context, rc, operatorID string) (domain.ComplianceDecision, error) {
	s.lastRC, s.lastOperator = rc, operatorID
	return s.decision, s.err
}

func (s *stubService) Biddable(_ context.Context, rc, operatorID string) (bool, error) {
	s.lastRC, s.lastOperator = rc, operatorID
	return s.biddable, s.err
}

func newComplianceRouter(svc Service) http.Handler {
	h := New(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Use(operator.Middleware)
	h.Register(r)
	return r
}

func allowedDecision() domain.ComplianceDecision {
	return domain.ComplianceDecision{
		RegistrationNumber: "KA01AB1234",
		OperatorID:         "op-1",
		Status:             domain.StatusAllowed,
		ReasonCodes:        []string{},
		Classification:     domain.FleetSXL,
		BodyCategory:       domain.BodyContainer,
		GVWKg:              16000,
		TyreCount:          6,
		AxleCount:          2,
		CacheExpiresAt:     time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC),
		LastVerification: domain.VerificationMeta{
			Provider:  "surepass",
			Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestHandleVerify(t *testing.T) {
	svc := &stubService{decision: allowedDecision()}
	router := newComplianceRouter(svc)

	req := testutil.NewRequest(t, http.MethodPost, "/vehicles/KA01AB1234/verify")
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[DecisionResponse](t, rr)
	assert.Equal(t, "ALLOWED", resp.Status)
	assert.Equal(t, "SXL", resp.Classification)
	assert.Equal(t, "surepass", resp.Verification.Provider)
	assert.Equal(t, "KA01AB1234", svc.lastRC)
	assert.Equal(t, "op-1", svc.lastOperator)
}

func TestHandleVerify_RequiresOperator(t *testing.T) {
	router := newComplianceRouter(&stubService{})

	req := testutil.NewRequest(t, http.MethodPost, "/vehicles/KA01AB1234/verify")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	body := testutil.UnmarshalResponse[map[string]string](t, rr)
	assert.Equal(t, "bad_request", (*body)["error"])
}

func TestHandleVerify_RegistryDown(t *testing.T) {
	svc := &stubService{err: dErrors.New(dErrors.CodeUnavailable, "registry verification unavailable")}
	router := newComplianceRouter(svc)

	req := testutil.NewRequest(t, http.MethodPost, "/vehicles/KA01AB1234/verify")
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestHandleDecision_NotFound(t *testing.T) {
	svc := &stubService{err: dErrors.New(dErrors.CodeNotFound, "no cached decision")}
	router := newComplianceRouter(svc)

	req := testutil.NewRequest(t, http.MethodGet, "/vehicles/KA01AB1234/compliance")
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestHandleBiddable(t *testing.T) {
	svc := &stubService{biddable: true}
	router := newComplianceRouter(svc)

	req := testutil.NewRequest(t, http.MethodGet, "/vehicles/KA01AB1234/biddable")
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[BiddableResponse](t, rr)
	assert.True(t, resp.Biddable)
	assert.Equal(t, "KA01AB1234", resp.RegistrationNumber)
}
