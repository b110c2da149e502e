package tools

// FilterResult holds the outcome of filtering tool calls against an
// enabled-tools list.
type FilterResult struct {
	// Allowed contains tool calls that passed the filter.
	Allowed []ToolCall

	// Rejected contains tool calls that were not in the enabled list,
	// paired with error results to feed back to the agent runtime.
	Rejected []ToolResult
}

// FilterEnabledTools checks each tool call against the enabled list.
// If enabledTools is empty or nil, all tool calls are allowed.
// Returns a FilterResult with allowed and rejected tool calls.
func FilterEnabledTools(calls []ToolCall, enabledTools []string) FilterResult {
	// No filter: all allowed.
	if len(enabledTools) == 0 {
		return FilterResult{Allowed: calls}
	}

	// Build lookup set.
	enabled := make(map[string]bool, len(enabledTools))
	for _, name := range enabledTools {
		enabled[name] = true
	}

	var result FilterResult
	for _, call := range calls {
		if enabled[call.Name] {
			result.Allowed = append(result.Allowed, call)
		} else {
			result.Rejected = append(result.Rejected, ToolResult{
				CallID:  call.ID,
				Output:  "tool " + call.Name + " is not enabled on this server",
				IsError: true,
			})
		}
	}

	return result
}
