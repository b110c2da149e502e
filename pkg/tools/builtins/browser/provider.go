// Package browser provides a FunctionProvider exposing remote browser
// sandbox sessions as agent tools: session lifecycle, live view,
// interactive control, and automation WebSocket headers.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/genesistools/genesis/pkg/api"
	"github.com/genesistools/genesis/pkg/genesis"
	"github.com/genesistools/genesis/pkg/observability"
	"github.com/genesistools/genesis/pkg/tools"
	"github.com/genesistools/genesis/pkg/tools/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// Ensure Provider implements FunctionProvider.
var _ registry.FunctionProvider = (*Provider)(nil)

// Provider is a FunctionProvider wrapping a genesis.BrowserClient.
type Provider struct {
	client *genesis.BrowserClient

	// identifier and sessionTimeout are the configured defaults used
	// when a tool call does not specify its own.
	identifier     string
	sessionTimeout int

	// liveViewExpiry is the default presigned URL validity in seconds.
	liveViewExpiry int

	sessionActive prometheus.Gauge
}

// Config holds settings for the browser provider.
type Config struct {
	// Identifier is the default sandbox identifier for new sessions.
	// Empty uses genesis.DefaultBrowserIdentifier.
	Identifier string

	// SessionTimeout is the default session idle timeout in seconds.
	// Zero uses genesis.DefaultBrowserSessionTimeout.
	SessionTimeout int

	// LiveViewExpiry is the default presigned live-view URL validity
	// in seconds. Zero uses genesis.DefaultLiveViewExpiry.
	LiveViewExpiry int
}

// New creates a browser tool provider around the given client.
func New(client *genesis.BrowserClient, cfg Config) *Provider {
	expiry := cfg.LiveViewExpiry
	if expiry <= 0 {
		expiry = genesis.DefaultLiveViewExpiry
	}
	return &Provider{
		client:         client,
		identifier:     cfg.Identifier,
		sessionTimeout: cfg.SessionTimeout,
		liveViewExpiry: expiry,
		sessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "genesis_browser_session_active",
			Help: "Whether a browser sandbox session is live (0 or 1)",
		}),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "browser"
}

// emptyParams is the schema for tools that take no arguments.
var emptyParams = json.RawMessage(`{"type":"object","properties":{}}`)

// Tools returns the browser tool definitions in their documented order.
func (p *Provider) Tools() []api.ToolDefinition {
	startParams, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"identifier": map[string]any{
				"type":        "string",
				"description": "Browser sandbox identifier (default: " + genesis.DefaultBrowserIdentifier + ")",
			},
			"name": map[string]any{
				"type":        "string",
				"description": "A name for the browser session",
			},
			"session_timeout_seconds": map[string]any{
				"type":        "integer",
				"description": "Idle timeout for the session in seconds",
			},
		},
	})

	viewParams, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expires": map[string]any{
				"type":        "integer",
				"description": "Seconds until the pre-signed URL expires",
			},
		},
	})

	return []api.ToolDefinition{
		{
			Type:        "function",
			Name:        "browser_start",
			Description: "Start a browser sandbox session.",
			Parameters:  startParams,
		},
		{
			Type:        "function",
			Name:        "browser_stop",
			Description: "Stop the current browser session.",
			Parameters:  emptyParams,
		},
		{
			Type:        "function",
			Name:        "browser_view",
			Description: "Generate a pre-signed URL to view the live browser session.",
			Parameters:  viewParams,
		},
		{
			Type:        "function",
			Name:        "browser_control",
			Description: "Take interactive control of the browser session, pausing automation.",
			Parameters:  emptyParams,
		},
		{
			Type:        "function",
			Name:        "browser_release",
			Description: "Release interactive control of the browser session back to automation.",
			Parameters:  emptyParams,
		},
		{
			Type:        "function",
			Name:        "browser_ws_headers",
			Description: "Generate the WebSocket URL and headers for connecting to the browser sandbox.",
			Parameters:  emptyParams,
		},
	}
}

// CanExecute returns true for the browser_* tools.
func (p *Provider) CanExecute(toolName string) bool {
	switch toolName {
	case "browser_start", "browser_stop", "browser_view",
		"browser_control", "browser_release", "browser_ws_headers":
		return true
	}
	return false
}

// Execute runs one of the browser tools.
func (p *Provider) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	switch call.Name {
	case "browser_start":
		return p.execStart(ctx, call)
	case "browser_stop":
		return p.execStop(ctx, call)
	case "browser_view":
		return p.execView(call)
	case "browser_control":
		return p.execControl(ctx, call)
	case "browser_release":
		return p.execRelease(ctx, call)
	case "browser_ws_headers":
		return p.execWSHeaders(call)
	}
	return &tools.ToolResult{
		CallID:  call.ID,
		Output:  fmt.Sprintf("browser provider does not handle tool %q", call.Name),
		IsError: true,
	}, nil
}

func (p *Provider) execStart(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	var args struct {
		Identifier            string `json:"identifier"`
		Name                  string `json:"name"`
		SessionTimeoutSeconds int    `json:"session_timeout_seconds"`
	}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errResult(call.ID, fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	// Tool arguments win over configured defaults; the client fills in
	// the package defaults for anything still unset.
	if args.Identifier == "" {
		args.Identifier = p.identifier
	}
	if args.SessionTimeoutSeconds <= 0 {
		args.SessionTimeoutSeconds = p.sessionTimeout
	}

	sessionID, err := p.client.Start(ctx, genesis.StartBrowserOptions{
		Identifier:            args.Identifier,
		Name:                  args.Name,
		SessionTimeoutSeconds: args.SessionTimeoutSeconds,
	})
	if err != nil {
		slog.Warn("browser_start failed", "call_id", call.ID, "error", err.Error())
		return errResult(call.ID, err.Error()), nil
	}

	p.sessionActive.Set(1)
	observability.SessionsStartedTotal.WithLabelValues(string(api.KindBrowser)).Inc()
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Browser session started with ID: " + sessionID,
	}, nil
}

func (p *Provider) execStop(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if err := p.client.Stop(ctx); err != nil {
		slog.Warn("browser_stop failed", "call_id", call.ID, "error", err.Error())
		return errResult(call.ID, err.Error()), nil
	}
	p.sessionActive.Set(0)
	observability.SessionsStoppedTotal.WithLabelValues(string(api.KindBrowser)).Inc()
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Browser session stopped",
	}, nil
}

func (p *Provider) execView(call tools.ToolCall) (*tools.ToolResult, error) {
	var args struct {
		Expires int `json:"expires"`
	}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errResult(call.ID, fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	if args.Expires <= 0 {
		args.Expires = p.liveViewExpiry
	}

	url, err := p.client.GenerateLiveViewURL(args.Expires)
	if err != nil {
		return errResult(call.ID, err.Error()), nil
	}
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Browser view URL: " + url,
	}, nil
}

func (p *Provider) execControl(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if err := p.client.TakeControl(ctx); err != nil {
		return errResult(call.ID, err.Error()), nil
	}
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Took control of browser session",
	}, nil
}

func (p *Provider) execRelease(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if err := p.client.ReleaseControl(ctx); err != nil {
		return errResult(call.ID, err.Error()), nil
	}
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Released control of browser session",
	}, nil
}

func (p *Provider) execWSHeaders(call tools.ToolCall) (*tools.ToolResult, error) {
	wsURL, headers, err := p.client.GenerateWSHeaders()
	if err != nil {
		return errResult(call.ID, err.Error()), nil
	}

	headersJSON, _ := json.Marshal(headers)
	return &tools.ToolResult{
		CallID: call.ID,
		Output: fmt.Sprintf("WebSocket URL: %s\nHeaders: %s", wsURL, headersJSON),
	}, nil
}

// Routes exposes the session status endpoint.
func (p *Provider) Routes() []registry.Route {
	return []registry.Route{
		{
			Method:  "GET",
			Pattern: "/tools/browser/status",
			Handler: func(w http.ResponseWriter, r *http.Request) {
				id := p.client.SessionID()
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(api.SessionStatus{
					Kind:      api.KindBrowser,
					Active:    id != "",
					SessionID: id,
				})
			},
		},
	}
}

// Collectors returns the session gauge.
func (p *Provider) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.sessionActive}
}

// Close stops any still-live session so the remote sandbox is not left
// running until its idle timeout.
func (p *Provider) Close() error {
	if p.client.SessionID() == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.client.Stop(ctx); err != nil {
		return fmt.Errorf("stopping browser session: %w", err)
	}
	p.sessionActive.Set(0)
	return nil
}

func errResult(callID, msg string) *tools.ToolResult {
	return &tools.ToolResult{
		CallID:  callID,
		Output:  msg,
		IsError: true,
	}
}
