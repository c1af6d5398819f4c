package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookfairhq/pos-backend/internal/router"
)

type fakeDispatcher struct {
	lastSession string
	lastAction  string
	view        router.View
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, sessionID, action string) router.View {
	f.lastSession = sessionID
	f.lastAction = action
	return f.view
}

func TestActionsHandle(t *testing.T) {
	dispatcher := &fakeDispatcher{view: router.View{Text: "ok"}}
	controller := NewActionsController(dispatcher, nil)

	body := `{"session_id":"op-1","action":"view_cart"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/actions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if dispatcher.lastSession != "op-1" || dispatcher.lastAction != "view_cart" {
		t.Errorf("unexpected dispatch (%q, %q)", dispatcher.lastSession, dispatcher.lastAction)
	}

	var envelope struct {
		Data router.View `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.Text != "ok" {
		t.Errorf("unexpected view %+v", envelope.Data)
	}
}

func TestActionsHandleDefaultsToMainMenu(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	controller := NewActionsController(dispatcher, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions", strings.NewReader(`{"session_id":"op-1"}`))
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dispatcher.lastAction != router.ActionMain {
		t.Errorf("expected the main action, got %q", dispatcher.lastAction)
	}
}

func TestActionsHandleMissingSession(t *testing.T) {
	controller := NewActionsController(&fakeDispatcher{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions", strings.NewReader(`{"action":"main"}`))
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATION_ERROR") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestActionsHandleBadJSON(t *testing.T) {
	controller := NewActionsController(&fakeDispatcher{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

type fakeInvalidator struct {
	called bool
}

func (f *fakeInvalidator) InvalidateCaches() { f.called = true }

func TestRefreshHandle(t *testing.T) {
	invalidator := &fakeInvalidator{}
	controller := NewRefreshController(invalidator, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/refresh", nil)
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !invalidator.called {
		t.Error("expected the caches invalidated")
	}
}

func TestHealthHandle(t *testing.T) {
	controller := NewHealthController()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	controller.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
