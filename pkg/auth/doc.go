// Package auth provides pluggable authentication for the genesis MCP
// server.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware in front of the MCP endpoint,
// keeping it decoupled from tool execution. Sandbox sessions are
// server-wide, so the identity is used for auditing and rate limiting
// rather than per-caller scoping.
package auth
