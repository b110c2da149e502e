// Package config provides unified configuration for the genesis
// sandbox tool adapter.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GENESIS_ prefix, plus the
//     AWS_REGION/AWS_DEFAULT_REGION fallback for the region)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the genesis adapter.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Genesis       GenesisConfig       `yaml:"genesis"`
	Browser       BrowserConfig       `yaml:"browser"`
	Interpreter   InterpreterConfig   `yaml:"interpreter"`
	Tools         ToolsConfig         `yaml:"tools"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the MCP server.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
	Auth         AuthConfig    `yaml:"auth"`
}

// AuthConfig holds inbound authentication settings for the MCP server.
// When disabled, all callers are accepted as anonymous.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`

	// APIKeys lists static keys accepted from callers.
	APIKeys []APIKeyEntry `yaml:"api_keys"`

	// JWTSecret enables HMAC JWT bearer auth when non-empty.
	JWTSecret     string `yaml:"jwt_secret"`
	JWTSecretFile string `yaml:"jwt_secret_file"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTAudience   string `yaml:"jwt_audience"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// APIKeyEntry maps a static API key to a caller identity.
type APIKeyEntry struct {
	Key     string   `yaml:"key"`
	Subject string   `yaml:"subject"`
	Tier    string   `yaml:"tier"`
	Scopes  []string `yaml:"scopes"`
}

// RateLimitConfig holds per-tier request rate limits.
type RateLimitConfig struct {
	// DefaultRPM applies to tiers without an explicit entry.
	// Zero disables rate limiting.
	DefaultRPM int `yaml:"default_rpm"`

	// Tiers maps tier name to requests per minute.
	Tiers map[string]int `yaml:"tiers"`
}

// GenesisConfig holds remote service connection settings.
type GenesisConfig struct {
	Region           string `yaml:"region"`              // default: "us-west-2" (via env fallback)
	Endpoint         string `yaml:"endpoint"`            // optional override of the regional endpoint
	APIKey           string `yaml:"api_key"`             // optional
	APIKeyFile       string `yaml:"api_key_file"`        // _file variant for api_key
	WSSigningKey     string `yaml:"ws_signing_key"`      // signs ws headers and live-view URLs
	WSSigningKeyFile string `yaml:"ws_signing_key_file"` // _file variant for ws_signing_key
}

// BrowserConfig holds browser sandbox settings.
type BrowserConfig struct {
	Identifier     string `yaml:"identifier"`      // default: "aws.browser.v1"
	SessionTimeout int    `yaml:"session_timeout"` // seconds, default: 3600
	LiveViewExpiry int    `yaml:"live_view_expiry"` // seconds, default: 300
}

// InterpreterConfig holds code interpreter sandbox settings.
type InterpreterConfig struct {
	Identifier     string `yaml:"identifier"`      // default: "aws.codeinterpreter.v1"
	SessionTimeout int    `yaml:"session_timeout"` // seconds, default: 900
}

// ToolsConfig restricts which tools the MCP server exposes.
type ToolsConfig struct {
	// Enabled lists tool names to expose. Empty means all tools.
	Enabled []string `yaml:"enabled"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Browser: BrowserConfig{
			Identifier:     "aws.browser.v1",
			SessionTimeout: 3600,
			LiveViewExpiry: 300,
		},
		Interpreter: InterpreterConfig{
			Identifier:     "aws.codeinterpreter.v1",
			SessionTimeout: 900,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
