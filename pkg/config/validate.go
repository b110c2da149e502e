package config

import (
	"errors"
	"fmt"
)

// knownTools is the documented tool set; tools.enabled entries must
// come from this list.
var knownTools = map[string]bool{
	"browser_start":            true,
	"browser_stop":             true,
	"browser_view":             true,
	"browser_control":          true,
	"browser_release":          true,
	"browser_ws_headers":       true,
	"code_interpreter_start":   true,
	"code_interpreter_stop":    true,
	"code_interpreter_execute": true,
}

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// genesis.region is required unless an explicit endpoint is set.
	if c.Genesis.Region == "" && c.Genesis.Endpoint == "" {
		errs = append(errs, fmt.Errorf("genesis.region or genesis.endpoint is required"))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// Session timeouts must be positive.
	if c.Browser.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("browser.session_timeout must be > 0, got %d", c.Browser.SessionTimeout))
	}
	if c.Browser.LiveViewExpiry <= 0 {
		errs = append(errs, fmt.Errorf("browser.live_view_expiry must be > 0, got %d", c.Browser.LiveViewExpiry))
	}
	if c.Interpreter.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("interpreter.session_timeout must be > 0, got %d", c.Interpreter.SessionTimeout))
	}

	// Enabled auth needs at least one credential source.
	if c.Server.Auth.Enabled && len(c.Server.Auth.APIKeys) == 0 && c.Server.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("server.auth is enabled but has no api_keys and no jwt_secret"))
	}
	for i, entry := range c.Server.Auth.APIKeys {
		if entry.Key == "" || entry.Subject == "" {
			errs = append(errs, fmt.Errorf("server.auth.api_keys[%d]: key and subject are required", i))
		}
	}

	// tools.enabled entries must name documented tools.
	for _, name := range c.Tools.Enabled {
		if !knownTools[name] {
			errs = append(errs, fmt.Errorf("tools.enabled contains unknown tool %q", name))
		}
	}

	return errors.Join(errs...)
}
