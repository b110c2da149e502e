package genesis

import "encoding/json"

// Default sandbox identifiers and timeouts for the Genesis service.
const (
	DefaultBrowserIdentifier     = "aws.browser.v1"
	DefaultInterpreterIdentifier = "aws.codeinterpreter.v1"

	// DefaultBrowserSessionTimeout is the idle timeout for browser
	// sessions, in seconds.
	DefaultBrowserSessionTimeout = 3600

	// DefaultInterpreterSessionTimeout is the idle timeout for code
	// interpreter sessions, in seconds.
	DefaultInterpreterSessionTimeout = 900

	// DefaultLiveViewExpiry is how long a presigned live-view URL
	// stays valid, in seconds.
	DefaultLiveViewExpiry = 300
)

// createSessionRequest is the request body for creating a session of
// either kind.
type createSessionRequest struct {
	Identifier            string `json:"identifier"`
	Name                  string `json:"name,omitempty"`
	SessionTimeoutSeconds int    `json:"session_timeout_seconds"`
}

// createSessionResponse is the service's reply to session creation.
type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// invokeRequest is the request body for POST .../invoke on a code
// interpreter session.
type invokeRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// InvokeResult is the service's reply to a code interpreter invocation.
// It is returned to callers as decoded, without interpretation.
type InvokeResult struct {
	Status   string          `json:"status"`
	Stdout   string          `json:"stdout,omitempty"`
	Stderr   string          `json:"stderr,omitempty"`
	ExitCode int             `json:"exit_code"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// StartBrowserOptions overrides the defaults for a browser session.
// Zero values fall back to the package defaults.
type StartBrowserOptions struct {
	Identifier            string
	Name                  string
	SessionTimeoutSeconds int
}

// StartInterpreterOptions overrides the defaults for a code
// interpreter session. Zero values fall back to the package defaults.
type StartInterpreterOptions struct {
	Identifier            string
	Name                  string
	SessionTimeoutSeconds int
}
