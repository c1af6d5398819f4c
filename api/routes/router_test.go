package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bookfairhq/pos-backend/internal/router"
)

type fakeDispatcher struct{}

func (fakeDispatcher) Dispatch(ctx context.Context, sessionID, action string) router.View {
	return router.View{Text: "dispatched"}
}

type fakeInvalidator struct{}

func (fakeInvalidator) InvalidateCaches() {}

func newTestHandler() http.Handler {
	return New(Params{
		Registry:   prometheus.NewRegistry(),
		Dispatcher: fakeDispatcher{},
		Catalog:    fakeInvalidator{},
	})
}

func TestRoutes(t *testing.T) {
	handler := newTestHandler()

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodPost, "/v1/actions", `{"session_id":"op","action":"main"}`, http.StatusOK},
		{http.MethodPost, "/v1/refresh", "", http.StatusOK},
		{http.MethodGet, "/v1/actions", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "fixed-id" {
		t.Errorf("expected the inbound id echoed, got %q", got)
	}
}
