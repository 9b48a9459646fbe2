package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

const testSlackHook = "https://hooks.slack.com/services/T000/B000/XXXX"

func TestSlackSender_Payload(t *testing.T) {
	var body []byte
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlackSender(redirectClient(srv))
	text := FormatMessage(sampleJob("Backend Engineer", "Acme Corp"))

	if err := s.Send(context.Background(), testSlackHook, text); err != nil {
		t.Fatalf("Send() = %v, want nil", err)
	}
	if path != "/services/T000/B000/XXXX" {
		t.Errorf("unexpected path %q", path)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != text {
		t.Errorf("fallback text = %q, want full message", payload.Text)
	}
	if len(payload.Blocks) != 3 {
		t.Fatalf("expected header, section and divider, got %d blocks", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" || payload.Blocks[0].Text.Text != "🚀 Backend Engineer" {
		t.Errorf("header = %+v", payload.Blocks[0])
	}
	if payload.Blocks[1].Type != "section" || payload.Blocks[1].Text.Type != "mrkdwn" {
		t.Errorf("section = %+v", payload.Blocks[1])
	}
	if payload.Blocks[2].Type != "divider" {
		t.Errorf("expected trailing divider, got %s", payload.Blocks[2].Type)
	}
}

func TestSlackSender_RejectsForeignWebhook(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	err := NewSlackSender(redirectClient(srv)).Send(context.Background(), "https://evil.example/hook", "hi")
	if !errors.Is(err, model.ErrInvalidWebhook) {
		t.Fatalf("expected ErrInvalidWebhook, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("expected no HTTP call for a rejected webhook")
	}
}

func TestSlackSender_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewSlackSender(redirectClient(srv)).Send(context.Background(), testSlackHook, "hi")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 3*time.Second {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestBuildPayload_HeaderOnly(t *testing.T) {
	p := buildPayload("just a title")
	if len(p.Blocks) != 2 {
		t.Fatalf("expected header and divider, got %d blocks", len(p.Blocks))
	}
}
