// Package tools defines the tool executor interface and types for the
// genesis sandbox adapter. It provides the ToolExecutor contract that
// tool backends implement, ToolCall/ToolResult types for executor
// communication, and filtering logic for restricting which tools an
// agent runtime may invoke.
//
// This package depends only on pkg/api and has no external dependencies.
package tools
