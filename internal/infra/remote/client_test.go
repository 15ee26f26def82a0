package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSessionState_Reachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	if err := client.FetchSessionState(context.Background()); err != nil {
		t.Fatalf("expected reachable, got %v", err)
	}
}

func TestFetchSessionState_AuthFailureStillReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// A 401 proves the service is up; the probe only confirms connectivity
	client := NewClient(Config{URL: server.URL})
	if err := client.FetchSessionState(context.Background()); err != nil {
		t.Fatalf("expected reachable on 401, got %v", err)
	}
}

func TestFetchSessionState_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	if err := client.FetchSessionState(context.Background()); err == nil {
		t.Fatal("expected an error on 500")
	}
}

func TestFetchSessionState_Unreachable(t *testing.T) {
	client := NewClient(Config{
		URL:     "http://127.0.0.1:1/state",
		Timeout: 500 * time.Millisecond,
	})
	if err := client.FetchSessionState(context.Background()); err == nil {
		t.Fatal("expected an error when unreachable")
	}
}
