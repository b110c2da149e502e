package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/genesistools/genesis/pkg/api"
	"github.com/genesistools/genesis/pkg/tools"
	"github.com/prometheus/client_golang/prometheus"
)

// mockProvider implements FunctionProvider for testing.
type mockProvider struct {
	name       string
	toolDefs   []api.ToolDefinition
	execFn     func(context.Context, tools.ToolCall) (*tools.ToolResult, error)
	routes     []Route
	collectors []prometheus.Collector
	closed     bool
}

func (m *mockProvider) Name() string                       { return m.name }
func (m *mockProvider) Tools() []api.ToolDefinition        { return m.toolDefs }
func (m *mockProvider) Collectors() []prometheus.Collector { return m.collectors }
func (m *mockProvider) Routes() []Route                    { return m.routes }

func (m *mockProvider) CanExecute(name string) bool {
	for _, td := range m.toolDefs {
		if td.Name == name {
			return true
		}
	}
	return false
}

func (m *mockProvider) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if m.execFn != nil {
		return m.execFn(ctx, call)
	}
	return &tools.ToolResult{CallID: call.ID, Output: "default"}, nil
}

func (m *mockProvider) Close() error {
	m.closed = true
	return nil
}

// Verify mockProvider implements FunctionProvider.
var _ FunctionProvider = (*mockProvider)(nil)

func TestRegistry_DiscoverTools(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "test-provider",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "tool_a", Description: "Tool A"},
			{Type: "function", Name: "tool_b", Description: "Tool B"},
		},
	}
	reg.Register(p)

	discovered := reg.DiscoveredTools()
	if len(discovered) != 2 {
		t.Fatalf("DiscoveredTools() returned %d tools, want 2", len(discovered))
	}

	names := make(map[string]bool)
	for _, td := range discovered {
		names[td.Name] = true
	}
	if !names["tool_a"] || !names["tool_b"] {
		t.Errorf("expected tool_a and tool_b, got %v", names)
	}
}

func TestRegistry_DiscoverTools_StableOrder(t *testing.T) {
	reg := New()

	reg.Register(&mockProvider{
		name: "browser",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "browser_start"},
			{Type: "function", Name: "browser_stop"},
			{Type: "function", Name: "browser_view"},
		},
	})
	reg.Register(&mockProvider{
		name: "code_interpreter",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "code_interpreter_start"},
			{Type: "function", Name: "code_interpreter_execute"},
		},
	})

	want := []string{
		"browser_start", "browser_stop", "browser_view",
		"code_interpreter_start", "code_interpreter_execute",
	}

	// Listing must be idempotent and preserve registration order.
	for i := 0; i < 3; i++ {
		discovered := reg.DiscoveredTools()
		if len(discovered) != len(want) {
			t.Fatalf("DiscoveredTools() returned %d tools, want %d", len(discovered), len(want))
		}
		for j, td := range discovered {
			if td.Name != want[j] {
				t.Errorf("tool[%d] = %q, want %q", j, td.Name, want[j])
			}
		}
	}
}

func TestRegistry_CanExecute(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "test-provider",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "known_tool"},
		},
	}
	reg.Register(p)

	if !reg.CanExecute("known_tool") {
		t.Error("expected CanExecute(known_tool) = true")
	}
	if reg.CanExecute("unknown_tool") {
		t.Error("expected CanExecute(unknown_tool) = false")
	}
}

func TestRegistry_Execute(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "calc",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "add"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			var args struct {
				A, B int
			}
			json.Unmarshal([]byte(call.Arguments), &args)
			return &tools.ToolResult{
				CallID: call.ID,
				Output: fmt.Sprintf("%d", args.A+args.B),
			}, nil
		},
	}
	reg.Register(p)

	result, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:        "call_1",
		Name:      "add",
		Arguments: `{"A":3,"B":4}`,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CallID != "call_1" {
		t.Errorf("CallID = %q, want %q", result.CallID, "call_1")
	}
	if result.Output != "7" {
		t.Errorf("Output = %q, want %q", result.Output, "7")
	}
	if result.IsError {
		t.Error("expected IsError = false")
	}
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	reg := New()

	result, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:   "call_1",
		Name: "nonexistent",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError = true for unknown tool")
	}
	if result.CallID != "call_1" {
		t.Errorf("CallID = %q, want %q", result.CallID, "call_1")
	}
}

func TestRegistry_ToolNameConflict(t *testing.T) {
	reg := New()

	p1 := &mockProvider{
		name: "provider-1",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "shared_tool"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return &tools.ToolResult{CallID: call.ID, Output: "from-p1"}, nil
		},
	}
	p2 := &mockProvider{
		name: "provider-2",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "shared_tool"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return &tools.ToolResult{CallID: call.ID, Output: "from-p2"}, nil
		},
	}

	reg.Register(p1)
	reg.Register(p2)

	// First provider wins.
	result, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:   "call_1",
		Name: "shared_tool",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Output != "from-p1" {
		t.Errorf("Output = %q, want %q (first provider should win)", result.Output, "from-p1")
	}
}

func TestRegistry_PanicRecovery(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "panicky",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "crash_tool"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			panic("something went terribly wrong")
		},
	}
	reg.Register(p)

	result, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:   "call_panic",
		Name: "crash_tool",
	})
	if err != nil {
		t.Fatalf("expected nil error after panic recovery, got: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result after panic recovery")
	}
	if !result.IsError {
		t.Error("expected IsError = true after panic")
	}
	if result.CallID != "call_panic" {
		t.Errorf("CallID = %q, want %q", result.CallID, "call_panic")
	}
}

func TestRegistry_HTTPHandler(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "web-provider",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "web_tool"},
		},
		routes: []Route{
			{
				Method:  "GET",
				Pattern: "/tools/web/status",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
					w.Write([]byte(`{"status":"ok"}`))
				},
			},
		},
	}
	reg.Register(p)

	handler := reg.HTTPHandler()

	req := httptest.NewRequest("GET", "/tools/web/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /tools/web/status status = %d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != `{"status":"ok"}` {
		t.Errorf("GET response body = %q, want %q", string(body), `{"status":"ok"}`)
	}
}

func TestRegistry_EmptyRegistry(t *testing.T) {
	reg := New()

	if len(reg.DiscoveredTools()) != 0 {
		t.Errorf("DiscoveredTools() returned %d tools, want 0", len(reg.DiscoveredTools()))
	}
	if reg.CanExecute("any_tool") {
		t.Error("expected CanExecute = false for empty registry")
	}

	result, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:   "call_1",
		Name: "any_tool",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError = true for empty registry")
	}

	if reg.HasProviders() {
		t.Error("expected HasProviders() = false for empty registry")
	}
	if reg.HTTPHandler() == nil {
		t.Fatal("expected non-nil handler from empty registry")
	}
	if err := reg.Close(); err != nil {
		t.Errorf("Close() on empty registry failed: %v", err)
	}
}

func TestRegistry_Kind(t *testing.T) {
	reg := New()
	if reg.Kind() != tools.ToolKindBuiltin {
		t.Errorf("Kind() = %d, want ToolKindBuiltin (%d)", reg.Kind(), tools.ToolKindBuiltin)
	}
}

func TestRegistry_Close(t *testing.T) {
	reg := New()

	p1 := &mockProvider{name: "p1", toolDefs: []api.ToolDefinition{{Type: "function", Name: "t1"}}}
	p2 := &mockProvider{name: "p2", toolDefs: []api.ToolDefinition{{Type: "function", Name: "t2"}}}

	reg.Register(p1)
	reg.Register(p2)

	if err := reg.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if !p1.closed {
		t.Error("provider p1 was not closed")
	}
	if !p2.closed {
		t.Error("provider p2 was not closed")
	}
}

func TestRegistry_ExecuteError(t *testing.T) {
	reg := New()

	p := &mockProvider{
		name: "error-provider",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "fail_tool"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return nil, fmt.Errorf("provider internal error")
		},
	}
	reg.Register(p)

	_, err := reg.Execute(context.Background(), tools.ToolCall{
		ID:   "call_err",
		Name: "fail_tool",
	})
	if err == nil {
		t.Fatal("expected error from Execute")
	}
}
