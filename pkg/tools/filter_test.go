package tools

import (
	"testing"
)

func TestFilterEnabledTools(t *testing.T) {
	tests := []struct {
		name         string
		calls        []ToolCall
		enabledTools []string
		wantAllowed  int
		wantRejected int
	}{
		{
			name: "all allowed when no filter",
			calls: []ToolCall{
				{ID: "c1", Name: "browser_start"},
				{ID: "c2", Name: "browser_view"},
			},
			enabledTools: nil,
			wantAllowed:  2,
			wantRejected: 0,
		},
		{
			name: "all allowed when empty filter",
			calls: []ToolCall{
				{ID: "c1", Name: "browser_start"},
			},
			enabledTools: []string{},
			wantAllowed:  1,
			wantRejected: 0,
		},
		{
			name: "some rejected",
			calls: []ToolCall{
				{ID: "c1", Name: "browser_start"},
				{ID: "c2", Name: "code_interpreter_execute"},
				{ID: "c3", Name: "browser_view"},
			},
			enabledTools: []string{"browser_start", "browser_view"},
			wantAllowed:  2,
			wantRejected: 1,
		},
		{
			name: "all rejected",
			calls: []ToolCall{
				{ID: "c1", Name: "code_interpreter_start"},
				{ID: "c2", Name: "code_interpreter_execute"},
			},
			enabledTools: []string{"browser_start"},
			wantAllowed:  0,
			wantRejected: 2,
		},
		{
			name:         "empty calls",
			calls:        []ToolCall{},
			enabledTools: []string{"browser_start"},
			wantAllowed:  0,
			wantRejected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterEnabledTools(tt.calls, tt.enabledTools)

			if len(result.Allowed) != tt.wantAllowed {
				t.Errorf("allowed count = %d, want %d", len(result.Allowed), tt.wantAllowed)
			}
			if len(result.Rejected) != tt.wantRejected {
				t.Errorf("rejected count = %d, want %d", len(result.Rejected), tt.wantRejected)
			}

			// Verify rejected results have IsError=true and descriptive messages.
			for _, r := range result.Rejected {
				if !r.IsError {
					t.Errorf("rejected result for %q should have IsError=true", r.CallID)
				}
				if r.Output == "" {
					t.Errorf("rejected result for %q should have non-empty output", r.CallID)
				}
			}
		})
	}
}
