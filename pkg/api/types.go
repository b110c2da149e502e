package api

import "encoding/json"

// SandboxKind identifies which remote sandbox variant a session belongs to.
type SandboxKind string

const (
	// KindBrowser is a remote browser automation sandbox.
	KindBrowser SandboxKind = "browser"

	// KindCodeInterpreter is a remote code execution sandbox.
	KindCodeInterpreter SandboxKind = "code_interpreter"
)

// ToolDefinition describes one callable tool exposed to an agent runtime.
type ToolDefinition struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// SessionStatus reports the state of a session slot, as served by
// provider status routes.
type SessionStatus struct {
	Kind      SandboxKind `json:"kind"`
	Active    bool        `json:"active"`
	SessionID string      `json:"session_id,omitempty"`
}
