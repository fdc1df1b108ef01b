package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/ticket"
	ticketstore "fleetgate/internal/ticket/store"
	"fleetgate/pkg/platform/middleware/admin"
	"fleetgate/pkg/testutil"
)

const adminToken = "review-team-token"

func newTicketRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := ticket.NewService(ticketstore.NewMemoryStore())
	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(admin.RequireAdminToken(adminToken, logger))
	h.Register(r)
	return r
}

func TestAdminTokenRequired(t *testing.T) {
	router := newTicketRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/tickets")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestTicketLifecycleViaHandlers(t *testing.T) {
	router := newTicketRouter(t)

	createReq := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", CreateRequest{
		Type:               "PROVIDER_MISMATCH",
		RegistrationNumber: "KA01AB1234",
		OperatorID:         "op-1",
		Payload:            map[string]any{"field": "gvw_kg"},
	})
	createReq.Header.Set(admin.Header, adminToken)
	createRR := testutil.DoRequest(router, createReq)

	testutil.AssertStatus(t, createRR, http.StatusCreated)
	created := testutil.UnmarshalResponse[TicketResponse](t, createRR)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "OPEN", created.Status)
	assert.Equal(t, "HIGH", created.Priority)

	reviewReq := testutil.NewRequest(t, http.MethodPost, "/tickets/"+created.ID+"/review")
	reviewReq.Header.Set(admin.Header, adminToken)
	reviewRR := testutil.DoRequest(router, reviewReq)

	testutil.AssertStatus(t, reviewRR, http.StatusOK)
	assert.Equal(t, "IN_REVIEW", testutil.UnmarshalResponse[TicketResponse](t, reviewRR).Status)

	resolveReq := testutil.NewJSONRequest(t, http.MethodPost, "/tickets/"+created.ID+"/resolve", ResolveRequest{
		Notes: "operator confirmed registry correction",
	})
	resolveReq.Header.Set(admin.Header, adminToken)
	resolveRR := testutil.DoRequest(router, resolveReq)

	testutil.AssertStatus(t, resolveRR, http.StatusOK)
	resolved := testutil.UnmarshalResponse[TicketResponse](t, resolveRR)
	assert.Equal(t, "RESOLVED", resolved.Status)
	assert.Equal(t, "operator confirmed registry correction", resolved.ResolutionNotes)
	assert.NotNil(t, resolved.ResolvedAt)

	// Resolving twice conflicts.
	againRR := testutil.DoRequest(router, cloneResolve(t, created.ID))
	testutil.AssertStatus(t, againRR, http.StatusConflict)
}

func cloneResolve(t *testing.T, id string) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets/"+id+"/resolve", ResolveRequest{Notes: "again"})
	req.Header.Set(admin.Header, adminToken)
	return req
}

func TestHandleCreate_TypeRequired(t *testing.T) {
	router := newTicketRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", CreateRequest{})
	req.Header.Set(admin.Header, adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandleList_Filters(t *testing.T) {
	router := newTicketRouter(t)

	for _, typ := range []string{"PROVIDER_MISMATCH", "COMPLIANCE_BLOCK", "COMPLIANCE_BLOCK"} {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", CreateRequest{
			Type:               typ,
			RegistrationNumber: "KA01AB1234",
			OperatorID:         "op-1",
		})
		req.Header.Set(admin.Header, adminToken)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusCreated)
	}

	listReq := testutil.NewRequest(t, http.MethodGet, "/tickets?type=COMPLIANCE_BLOCK&limit=10")
	listReq.Header.Set(admin.Header, adminToken)
	listRR := testutil.DoRequest(router, listReq)

	testutil.AssertStatus(t, listRR, http.StatusOK)
	resp := testutil.UnmarshalResponse[ListResponse](t, listRR)
	require.Len(t, resp.Tickets, 2)
	for _, item := range resp.Tickets {
		assert.Equal(t, "COMPLIANCE_BLOCK", item.Type)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	router := newTicketRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/tickets/no-such-id")
	req.Header.Set(admin.Header, adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
