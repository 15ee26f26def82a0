package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
)

func sampleSession() *domain.UserSession {
	now := time.Now()
	return &domain.UserSession{
		SessionID: "s-1",
		UserID:    "u-1",
		StartTime: now.Add(-time.Minute),
		EndTime:   &now,
		PageViews: []string{"/", "/exam/1"},
	}
}

func TestHTTPSink_Deliver(t *testing.T) {
	var received domain.UserSession
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sink := NewHTTPSink(HTTPConfig{URL: server.URL})
	if err := sink.Deliver(context.Background(), sampleSession()); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	if received.SessionID != "s-1" {
		t.Errorf("expected session s-1, got %s", received.SessionID)
	}
	if len(received.PageViews) != 2 {
		t.Errorf("expected 2 page views, got %d", len(received.PageViews))
	}
}

func TestHTTPSink_CollectorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewHTTPSink(HTTPConfig{URL: server.URL})
	if err := sink.Deliver(context.Background(), sampleSession()); err == nil {
		t.Fatal("expected an error on 500 response")
	}
}

func TestHTTPSink_Unreachable(t *testing.T) {
	sink := NewHTTPSink(HTTPConfig{
		URL:     "http://127.0.0.1:1/analytics",
		Timeout: 500 * time.Millisecond,
	})
	if err := sink.Deliver(context.Background(), sampleSession()); err == nil {
		t.Fatal("expected an error when the collector is unreachable")
	}
}
