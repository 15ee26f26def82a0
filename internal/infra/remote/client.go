// Package remote wraps the narrow contract consumed from the remote
// persistence service: a cheap session-state fetch used to confirm
// connectivity. The response payload is never inspected.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds remote service settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client performs connectivity probes against the remote persistence service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a remote probe client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchSessionState confirms reachability of the remote service. Any
// completed exchange below 500 counts as reachable; auth failures still prove
// the service is up.
func (c *Client) FetchSessionState(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("remote returned status %d", resp.StatusCode)
	}
	return nil
}
