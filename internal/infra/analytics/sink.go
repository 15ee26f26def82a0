// Package analytics delivers sealed user sessions to an external sink.
// Delivery is fire-and-forget from the caller's perspective: failures are
// logged by the caller, never raised.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
)

// Sink receives sealed sessions on session end.
type Sink interface {
	Deliver(ctx context.Context, session *domain.UserSession) error
}

// HTTPConfig holds HTTP sink settings.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
}

// HTTPSink posts session payloads as JSON to a collector endpoint.
type HTTPSink struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSink creates an HTTP analytics sink.
func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSink{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Deliver(ctx context.Context, session *domain.UserSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analytics delivery failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("analytics sink returned status %d", resp.StatusCode)
	}
	return nil
}
