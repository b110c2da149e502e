package genesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/genesistools/genesis/pkg/debug"
)

// Config holds the settings shared by both sandbox clients.
type Config struct {
	// Region is the service region (e.g. "us-west-2").
	Region string

	// Endpoint overrides the default endpoint derived from Region.
	Endpoint string

	// APIKey is sent as the X-Genesis-Api-Key header on every request.
	APIKey string

	// WSSigningKey signs WebSocket headers and presigned live-view URLs.
	WSSigningKey []byte

	// HTTPClient allows injecting a custom HTTP client (useful for
	// testing). If nil, a client with a 120s timeout is used.
	HTTPClient *http.Client
}

// endpoint returns the base URL for the configured region.
func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return strings.TrimSuffix(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://genesis.%s.amazonaws.com", c.Region)
}

// httpClient is the shared JSON-over-HTTP plumbing for the Genesis
// data plane. Execution timeouts are enforced by the service; the
// client only applies an overall HTTP timeout.
type httpClient struct {
	base   string
	apiKey string
	hc     *http.Client
}

func newHTTPClient(cfg Config) *httpClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	return &httpClient{
		base:   cfg.endpoint(),
		apiKey: cfg.APIKey,
		hc:     hc,
	}
}

// postJSON sends a POST with the given body to path and decodes the
// response into out. A nil in sends an empty JSON object; a nil out
// discards the response body.
func (c *httpClient) postJSON(ctx context.Context, path string, in, out any) error {
	body := []byte("{}")
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	debug.Log("genesis", "request", "method", "POST", "path", path)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Genesis-Api-Key", c.apiKey)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("genesis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("genesis at capacity (HTTP 429)")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("genesis returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wsBase returns the WebSocket form of the service base URL.
func (c *httpClient) wsBase() string {
	u, err := url.Parse(c.base)
	if err != nil {
		return c.base
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	return u.String()
}

// host returns the hostname of the service base URL.
func (c *httpClient) host() string {
	u, err := url.Parse(c.base)
	if err != nil {
		return c.base
	}
	return u.Host
}
