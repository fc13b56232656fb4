package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/httpx"
)

func TestPostJSONDeliversPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %q", ct)
		}
		if sig := r.Header.Get("X-Signature"); sig != "abc123" {
			t.Errorf("expected signature header abc123, got %q", sig)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["event"] != "offer.sent" {
			t.Errorf("expected event offer.sent, got %v", body["event"])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := httpx.PostJSON(context.Background(), srv.URL,
		map[string]string{"event": "offer.sent"},
		map[string]string{"X-Signature": "abc123"},
		httpx.Policy{})
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
}

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := httpx.PostJSON(context.Background(), srv.URL, nil, nil,
		httpx.Policy{Attempts: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("expected delivery to recover, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestPostJSONStopsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("no such channel")) //nolint:errcheck
	}))
	defer srv.Close()

	err := httpx.PostJSON(context.Background(), srv.URL, nil, nil,
		httpx.Policy{Attempts: 3, Backoff: time.Millisecond})
	if err == nil {
		t.Fatal("expected an error for HTTP 400")
	}

	var se *httpx.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected a StatusError, got %v", err)
	}
	if se.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", se.Status)
	}
	if !strings.Contains(se.Body, "no such channel") {
		t.Errorf("expected body in error, got %q", se.Body)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected no retries on 4xx, got %d attempts", n)
	}
}

func TestPostJSONGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := httpx.PostJSON(context.Background(), srv.URL, nil, nil,
		httpx.Policy{Attempts: 2, Backoff: time.Millisecond})
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.Status != http.StatusServiceUnavailable {
		t.Errorf("expected final StatusError 503, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestPostJSONRetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Malformed Retry-After falls back to the policy backoff.
			w.Header().Set("Retry-After", "soon")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := httpx.PostJSON(context.Background(), srv.URL, nil, nil,
		httpx.Policy{Attempts: 2, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("expected 429 to be retried, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestPostJSONStopsWhenContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := httpx.PostJSON(ctx, srv.URL, nil, nil,
		httpx.Policy{Attempts: 3, Backoff: 10 * time.Second})
	if err == nil {
		t.Fatal("expected an error when the context expires")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("backoff ignored cancellation, took %v", elapsed)
	}
}

func TestPostJSONRejectsUnmarshalablePayload(t *testing.T) {
	err := httpx.PostJSON(context.Background(), "http://127.0.0.1:1", func() {}, nil, httpx.Policy{})
	if err == nil {
		t.Fatal("expected a marshal error")
	}
	if !strings.Contains(err.Error(), "marshal") {
		t.Errorf("expected marshal in error, got %v", err)
	}
}
