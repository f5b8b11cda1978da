package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/stockline-backend/internal/flow"
	"github.com/angelmondragon/stockline-backend/pkg/config"
	"github.com/angelmondragon/stockline-backend/pkg/logger"

	"github.com/rs/zerolog"
)

type stubDispatcher struct {
	lastEvent flow.Event
	reply     *flow.Prompt
	err       error
}

func (s *stubDispatcher) Dispatch(ctx context.Context, event flow.Event) (*flow.Prompt, error) {
	s.lastEvent = event
	return s.reply, s.err
}

func newTestRouter(dispatcher *stubDispatcher) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(cfg, logg, nil, dispatcher, nil)
}

func TestPostEventReturnsPrompt(t *testing.T) {
	dispatcher := &stubDispatcher{
		reply: &flow.Prompt{
			SessionID: "chat-1",
			Text:      "Select the supplier.",
			Options:   []flow.Option{{Label: "Mill & Co", Token: "supplier:abc"}},
		},
	}
	router := newTestRouter(dispatcher)

	body := `{"session_id":"chat-1","kind":"selection","payload":"start:receipt-create"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if dispatcher.lastEvent.SessionID != "chat-1" || dispatcher.lastEvent.Kind != flow.EventKindSelection {
		t.Fatalf("unexpected dispatched event: %+v", dispatcher.lastEvent)
	}

	var envelope struct {
		Data struct {
			SessionID string `json:"session_id"`
			Text      string `json:"text"`
			Options   []struct {
				Label string `json:"label"`
				Token string `json:"token"`
			} `json:"options"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Text != "Select the supplier." || len(envelope.Data.Options) != 1 {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestPostEventValidatesBody(t *testing.T) {
	router := newTestRouter(&stubDispatcher{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing session id", body: `{"kind":"text","payload":"hi"}`},
		{name: "bad kind", body: `{"session_id":"chat-1","kind":"gesture","payload":"hi"}`},
		{name: "unknown field", body: `{"session_id":"chat-1","kind":"text","payload":"hi","extra":true}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Stockline-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-Stockline-Env"))
	}
}
