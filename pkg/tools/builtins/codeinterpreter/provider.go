// Package codeinterpreter provides a FunctionProvider exposing remote
// code interpreter sandbox sessions as agent tools.
package codeinterpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
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

// Provider is a FunctionProvider wrapping a genesis.CodeInterpreterClient.
type Provider struct {
	client *genesis.CodeInterpreterClient

	// identifier and sessionTimeout are the configured defaults used
	// when a tool call does not specify its own.
	identifier     string
	sessionTimeout int
}

// Config holds settings for the code interpreter provider.
type Config struct {
	// Identifier is the default sandbox identifier for new sessions.
	// Empty uses genesis.DefaultInterpreterIdentifier.
	Identifier string

	// SessionTimeout is the default session idle timeout in seconds.
	// Zero uses genesis.DefaultInterpreterSessionTimeout.
	SessionTimeout int
}

// New creates a code interpreter tool provider around the given client.
func New(client *genesis.CodeInterpreterClient, cfg Config) *Provider {
	return &Provider{
		client:         client,
		identifier:     cfg.Identifier,
		sessionTimeout: cfg.SessionTimeout,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "code_interpreter"
}

// Tools returns the code interpreter tool definitions in their
// documented order.
func (p *Provider) Tools() []api.ToolDefinition {
	startParams, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"identifier": map[string]any{
				"type":        "string",
				"description": "Code interpreter sandbox identifier (default: " + genesis.DefaultInterpreterIdentifier + ")",
			},
			"name": map[string]any{
				"type":        "string",
				"description": "A name for the code interpreter session",
			},
			"session_timeout_seconds": map[string]any{
				"type":        "integer",
				"description": "Idle timeout for the session in seconds",
			},
		},
	})

	executeParams, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Code to execute in the sandbox",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "Sandbox method to invoke (default: execute)",
			},
			"params": map[string]any{
				"type":        "object",
				"description": "Parameters forwarded verbatim to the method",
			},
		},
		"required": []string{"code"},
	})

	return []api.ToolDefinition{
		{
			Type:        "function",
			Name:        "code_interpreter_start",
			Description: "Start a code interpreter sandbox session.",
			Parameters:  startParams,
		},
		{
			Type:        "function",
			Name:        "code_interpreter_stop",
			Description: "Stop the current code interpreter session.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Type:        "function",
			Name:        "code_interpreter_execute",
			Description: "Execute code in the code interpreter sandbox.",
			Parameters:  executeParams,
		},
	}
}

// CanExecute returns true for the code_interpreter_* tools.
func (p *Provider) CanExecute(toolName string) bool {
	switch toolName {
	case "code_interpreter_start", "code_interpreter_stop", "code_interpreter_execute":
		return true
	}
	return false
}

// Execute runs one of the code interpreter tools.
func (p *Provider) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	switch call.Name {
	case "code_interpreter_start":
		return p.execStart(ctx, call)
	case "code_interpreter_stop":
		return p.execStop(ctx, call)
	case "code_interpreter_execute":
		return p.execExecute(ctx, call)
	}
	return &tools.ToolResult{
		CallID:  call.ID,
		Output:  fmt.Sprintf("code_interpreter provider does not handle tool %q", call.Name),
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

	if args.Identifier == "" {
		args.Identifier = p.identifier
	}
	if args.SessionTimeoutSeconds <= 0 {
		args.SessionTimeoutSeconds = p.sessionTimeout
	}

	sessionID, err := p.client.Start(ctx, genesis.StartInterpreterOptions{
		Identifier:            args.Identifier,
		Name:                  args.Name,
		SessionTimeoutSeconds: args.SessionTimeoutSeconds,
	})
	if err != nil {
		slog.Warn("code_interpreter_start failed", "call_id", call.ID, "error", err.Error())
		return errResult(call.ID, err.Error()), nil
	}

	observability.SessionsStartedTotal.WithLabelValues(string(api.KindCodeInterpreter)).Inc()
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Code interpreter session started with ID: " + sessionID,
	}, nil
}

func (p *Provider) execStop(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if err := p.client.Stop(ctx); err != nil {
		slog.Warn("code_interpreter_stop failed", "call_id", call.ID, "error", err.Error())
		return errResult(call.ID, err.Error()), nil
	}
	observability.SessionsStoppedTotal.WithLabelValues(string(api.KindCodeInterpreter)).Inc()
	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Code interpreter session stopped",
	}, nil
}

func (p *Provider) execExecute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	var args struct {
		Code   string         `json:"code"`
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return errResult(call.ID, fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	// The default method takes the code string as its only parameter.
	// Explicit params pass through untouched.
	params := args.Params
	if params == nil {
		if args.Code == "" {
			return errResult(call.ID, "code is required"), nil
		}
		params = map[string]any{"code": args.Code}
	}

	result, err := p.client.Invoke(ctx, args.Method, params)
	if err != nil {
		slog.Warn("code_interpreter_execute failed", "call_id", call.ID, "error", err.Error())
		return errResult(call.ID, err.Error()), nil
	}

	return &tools.ToolResult{
		CallID: call.ID,
		Output: "Code execution result: " + formatResult(result),
	}, nil
}

// formatResult renders an InvokeResult as text for the agent.
func formatResult(r *genesis.InvokeResult) string {
	out := r.Stdout
	if r.Stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += r.Stderr
	}
	if out == "" && len(r.Result) > 0 {
		out = string(r.Result)
	}
	if r.ExitCode != 0 {
		out = fmt.Sprintf("%s\n(exit code %d)", out, r.ExitCode)
	}
	return out
}

// Routes returns nil (no HTTP routes for the code interpreter).
func (p *Provider) Routes() []registry.Route {
	return nil
}

// Collectors returns nil (no custom Prometheus collectors).
func (p *Provider) Collectors() []prometheus.Collector {
	return nil
}

// Close stops any still-live session.
func (p *Provider) Close() error {
	if p.client.SessionID() == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.client.Stop(ctx); err != nil {
		return fmt.Errorf("stopping code interpreter session: %w", err)
	}
	return nil
}

func errResult(callID, msg string) *tools.ToolResult {
	return &tools.ToolResult{
		CallID:  callID,
		Output:  msg,
		IsError: true,
	}
}
