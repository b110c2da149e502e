package genesis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/genesistools/genesis/pkg/api"
	"github.com/genesistools/genesis/pkg/debug"
)

// BrowserClient manages a single remote browser sandbox session.
type BrowserClient struct {
	client *httpClient
	signer *WSHeaderSigner

	mu        sync.Mutex
	sessionID string
}

// NewBrowserClient creates a browser client for the configured region.
func NewBrowserClient(cfg Config) *BrowserClient {
	return &BrowserClient{
		client: newHTTPClient(cfg),
		signer: NewWSHeaderSigner(cfg.WSSigningKey),
	}
}

// Start creates a remote browser session and caches its ID.
// Starting while a session is already live returns a SessionError.
func (b *BrowserClient) Start(ctx context.Context, opts StartBrowserOptions) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionID != "" {
		return "", &SessionError{Kind: api.KindBrowser, Op: "start", Reason: "session already active"}
	}

	if opts.Identifier == "" {
		opts.Identifier = DefaultBrowserIdentifier
	}
	if opts.SessionTimeoutSeconds <= 0 {
		opts.SessionTimeoutSeconds = DefaultBrowserSessionTimeout
	}

	var resp createSessionResponse
	err := b.client.postJSON(ctx, "/v1/browser/sessions", createSessionRequest{
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

	b.sessionID = resp.SessionID
	debug.Log("browser", "session started", "session_id", resp.SessionID, "identifier", opts.Identifier)
	return resp.SessionID, nil
}

// Stop releases the live browser session. The slot is cleared even if
// the remote call fails, since the session's fate is then unknown and
// the service-side timeout will collect it.
func (b *BrowserClient) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionID == "" {
		return &SessionError{Kind: api.KindBrowser, Op: "stop", Reason: "no session active"}
	}

	id := b.sessionID
	b.sessionID = ""
	debug.Log("browser", "session stopping", "session_id", id)
	return b.client.postJSON(ctx, "/v1/browser/sessions/"+id+"/stop", nil, nil)
}

// SessionID returns the live session's ID, or "" if none is active.
func (b *BrowserClient) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// GenerateLiveViewURL presigns a URL for viewing the live browser
// session. expires is the URL's validity in seconds; values <= 0 use
// DefaultLiveViewExpiry.
func (b *BrowserClient) GenerateLiveViewURL(expires int) (string, error) {
	b.mu.Lock()
	id := b.sessionID
	b.mu.Unlock()

	if id == "" {
		return "", &NoActiveSessionError{Kind: api.KindBrowser, Action: "generate_live_view_url"}
	}
	if expires <= 0 {
		expires = DefaultLiveViewExpiry
	}

	token, err := b.signer.Sign(id, b.client.host(), time.Duration(expires)*time.Second)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/v1/browser/sessions/%s/live-view?token=%s&expires=%d",
		b.client.base, id, token, expires), nil
}

// TakeControl hands interactive control of the session to the caller,
// pausing automation.
func (b *BrowserClient) TakeControl(ctx context.Context) error {
	return b.controlCall(ctx, "take_control", "take")
}

// ReleaseControl returns control of the session to automation.
func (b *BrowserClient) ReleaseControl(ctx context.Context) error {
	return b.controlCall(ctx, "release_control", "release")
}

func (b *BrowserClient) controlCall(ctx context.Context, action, verb string) error {
	b.mu.Lock()
	id := b.sessionID
	b.mu.Unlock()

	if id == "" {
		return &NoActiveSessionError{Kind: api.KindBrowser, Action: action}
	}
	return b.client.postJSON(ctx, "/v1/browser/sessions/"+id+"/control/"+verb, nil, nil)
}

// GenerateWSHeaders returns the automation WebSocket URL for the live
// session together with the headers required to connect to it.
func (b *BrowserClient) GenerateWSHeaders() (string, map[string]string, error) {
	b.mu.Lock()
	id := b.sessionID
	b.mu.Unlock()

	if id == "" {
		return "", nil, &NoActiveSessionError{Kind: api.KindBrowser, Action: "generate_ws_headers"}
	}

	token, err := b.signer.Sign(id, b.client.host(), time.Duration(DefaultLiveViewExpiry)*time.Second)
	if err != nil {
		return "", nil, err
	}

	wsURL := b.client.wsBase() + "/v1/browser/sessions/" + id + "/automation"
	headers := map[string]string{
		"Authorization":     "Bearer " + token,
		"X-Genesis-Session": id,
		"Host":              b.client.host(),
	}
	return wsURL, headers, nil
}
