package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/domain"
	"fleetgate/internal/trailer"
	vehiclestore "fleetgate/internal/trailer/store/vehicle"
	"fleetgate/pkg/platform/middleware/operator"
	"fleetgate/pkg/testutil"
)

func newTrailerRouter(t *testing.T) (http.Handler, *vehiclestore.MemoryStore) {
	t.Helper()
	store := vehiclestore.NewMemoryStore()
	svc := trailer.NewService(store)
	h := New(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Use(operator.Middleware)
	h.Register(r)
	return r, store
}

func seedPair(t *testing.T, store *vehiclestore.MemoryStore, operatorID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, domain.FleetVehicle{
		RegistrationNumber: "MH12TR1111",
		OperatorID:         operatorID,
		IsTrailer:          true,
		Status:             domain.VehicleActive,
		UpdatedAt:          now,
	}))
	require.NoError(t, store.Upsert(ctx, domain.FleetVehicle{
		RegistrationNumber: "MH12TK2222",
		OperatorID:         operatorID,
		IsTractor:          true,
		Status:             domain.VehicleActive,
		UpdatedAt:          now,
	}))
}

func TestHandleLinkAndCanBid(t *testing.T) {
	router, store := newTrailerRouter(t)
	seedPair(t, store, "op-1")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/trailers/link", LinkRequest{
		TrailerRC: "MH12TR1111",
		TractorRC: "MH12TK2222",
	})
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[LinkResponse](t, rr)
	assert.True(t, resp.Linked)

	bidReq := testutil.NewRequest(t, http.MethodGet, "/trailers/MH12TR1111/can-bid")
	bidReq.Header.Set(operator.Header, "op-1")
	bidRR := testutil.DoRequest(router, bidReq)

	testutil.AssertStatus(t, bidRR, http.StatusOK)
	bidResp := testutil.UnmarshalResponse[CanBidResponse](t, bidRR)
	assert.True(t, bidResp.CanBid)
}

func TestHandleLink_WrongOperator(t *testing.T) {
	router, store := newTrailerRouter(t)
	seedPair(t, store, "op-1")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/trailers/link", LinkRequest{
		TrailerRC: "MH12TR1111",
		TractorRC: "MH12TK2222",
	})
	req.Header.Set(operator.Header, "op-2")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestHandleLink_MalformedBody(t *testing.T) {
	router, _ := newTrailerRouter(t)

	req := testutil.NewRequest(t, http.MethodPost, "/trailers/link")
	req.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandleUnlink(t *testing.T) {
	router, store := newTrailerRouter(t)
	seedPair(t, store, "op-1")

	link := testutil.NewJSONRequest(t, http.MethodPost, "/trailers/link", LinkRequest{
		TrailerRC: "MH12TR1111",
		TractorRC: "MH12TK2222",
	})
	link.Header.Set(operator.Header, "op-1")
	testutil.AssertStatus(t, testutil.DoRequest(router, link), http.StatusOK)

	unlink := testutil.NewJSONRequest(t, http.MethodPost, "/trailers/unlink", UnlinkRequest{
		TrailerRC: "MH12TR1111",
	})
	unlink.Header.Set(operator.Header, "op-1")
	rr := testutil.DoRequest(router, unlink)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[LinkResponse](t, rr)
	assert.False(t, resp.Linked)

	got, err := store.Get(context.Background(), "MH12TK2222")
	require.NoError(t, err)
	assert.Empty(t, got.LinkedTrailerRC)
}

func TestHandlePing(t *testing.T) {
	router, store := newTrailerRouter(t)
	seedPair(t, store, "op-1")

	req := testutil.NewRequest(t, http.MethodPost, "/vehicles/MH12TK2222/gps-ping")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNoContent)

	got, err := store.Get(context.Background(), "MH12TK2222")
	require.NoError(t, err)
	assert.NotNil(t, got.GPSLastPing)
}

func TestHandlePing_UnknownVehicle(t *testing.T) {
	router, _ := newTrailerRouter(t)

	req := testutil.NewRequest(t, http.MethodPost, "/vehicles/XX00XX0000/gps-ping")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
