package genesis

import (
	"context"
	"fmt"
	"sync"

	"github.com/genesistools/genesis/pkg/api"
	"github.com/genesistools/genesis/pkg/debug"
)

// CodeInterpreterClient manages a single remote code interpreter
// sandbox session.
type CodeInterpreterClient struct {
	client *httpClient

	mu        sync.Mutex
	sessionID string
}

// NewCodeInterpreterClient creates a code interpreter client for the
// configured region.
func NewCodeInterpreterClient(cfg Config) *CodeInterpreterClient {
	return &CodeInterpreterClient{
		client: newHTTPClient(cfg),
	}
}

// Start creates a remote code interpreter session and caches its ID.
// Starting while a session is already live returns a SessionError.
func (c *CodeInterpreterClient) Start(ctx context.Context, opts StartInterpreterOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" {
		return "", &SessionError{Kind: api.KindCodeInterpreter, Op: "start", Reason: "session already active"}
	}

	if opts.Identifier == "" {
		opts.Identifier = DefaultInterpreterIdentifier
	}
	if opts.SessionTimeoutSeconds <= 0 {
		opts.SessionTimeoutSeconds = DefaultInterpreterSessionTimeout
	}

	var resp createSessionResponse
	err := c.client.postJSON(ctx, "/v1/interpreter/sessions", createSessionRequest{
		Identifier:            opts.Identifier,
		Name:                  opts.Name,
		SessionTimeoutSeconds: opts.SessionTimeoutSeconds,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("genesis returned empty session ID")
	}

	c.sessionID = resp.SessionID
	debug.Log("interpreter", "session started", "session_id", resp.SessionID, "identifier", opts.Identifier)
	return resp.SessionID, nil
}

// Stop releases the live code interpreter session. The slot is cleared
// even if the remote call fails.
func (c *CodeInterpreterClient) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID == "" {
		return &SessionError{Kind: api.KindCodeInterpreter, Op: "stop", Reason: "no session active"}
	}

	id := c.sessionID
	c.sessionID = ""
	debug.Log("interpreter", "session stopping", "session_id", id)
	return c.client.postJSON(ctx, "/v1/interpreter/sessions/"+id+"/stop", nil, nil)
}

// SessionID returns the live session's ID, or "" if none is active.
func (c *CodeInterpreterClient) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Invoke runs a named method in the live session. Params are forwarded
// verbatim and the decoded service response is returned without
// interpretation. The common path is method "execute" with
// {"code": "..."} params.
func (c *CodeInterpreterClient) Invoke(ctx context.Context, method string, params map[string]any) (*InvokeResult, error) {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()

	if id == "" {
		return nil, &NoActiveSessionError{Kind: api.KindCodeInterpreter, Action: "invoke"}
	}
	if method == "" {
		method = "execute"
	}

	var result InvokeResult
	err := c.client.postJSON(ctx, "/v1/interpreter/sessions/"+id+"/invoke", invokeRequest{
		Method: method,
		Params: params,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
