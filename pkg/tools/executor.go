package tools

import (
	"context"
)

// ToolKind classifies how a tool is hosted and executed.
type ToolKind int

const (
	// ToolKindBuiltin is a tool executed in-process against the remote
	// Genesis service. The registry routes the call to the provider
	// that owns the tool name.
	ToolKindBuiltin ToolKind = iota

	// ToolKindMCP is a tool surfaced to external agent runtimes over
	// the Model Context Protocol. The MCP server bridges incoming
	// calls back to a builtin executor.
	ToolKindMCP
)

// ToolExecutor executes tool calls. The builtin registry implements
// this interface; the MCP server consumes it.
type ToolExecutor interface {
	// Kind returns the type of tools this executor handles.
	Kind() ToolKind

	// CanExecute checks if this executor can handle the given tool name.
	CanExecute(toolName string) bool

	// Execute runs the tool and returns the result.
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)
}

// ToolCall represents an agent's request to invoke a tool.
type ToolCall struct {
	// ID is the unique call identifier (e.g., "call_abc123").
	ID string

	// Name is the tool function name.
	Name string

	// Arguments is the JSON-encoded arguments string.
	Arguments string
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	// CallID matches the originating ToolCall.ID.
	CallID string

	// Output is the tool output content (text).
	Output string

	// IsError indicates that the output is an error message.
	IsError bool
}
