package genesis

import (
	"fmt"

	"github.com/genesistools/genesis/pkg/api"
)

// SessionError reports misuse of the session lifecycle: starting a kind
// that already has a live session, or stopping a kind that has none.
type SessionError struct {
	Kind   api.SandboxKind
	Op     string // "start" or "stop"
	Reason string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Op, e.Reason)
}

// NoActiveSessionError reports an action attempted without a live
// session of the required kind.
type NoActiveSessionError struct {
	Kind   api.SandboxKind
	Action string
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("no active %s session for %s", e.Kind, e.Action)
}
