// Package api defines the shared types for the genesis sandbox tool
// adapter: sandbox kinds, tool definitions with their JSON Schema
// parameters, and tool call ID generation.
//
// The package has zero external dependencies (Go standard library only)
// and performs no I/O.
package api
