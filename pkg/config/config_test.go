package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets all env vars the loader reads, restoring them after
// the test via t.Setenv's cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GENESIS_CONFIG", "GENESIS_REGION", "GENESIS_ENDPOINT",
		"GENESIS_API_KEY", "GENESIS_WS_SIGNING_KEY", "GENESIS_PORT",
		"GENESIS_BROWSER_IDENTIFIER", "GENESIS_INTERPRETER_IDENTIFIER",
		"GENESIS_TOOLS", "AWS_REGION", "AWS_DEFAULT_REGION",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Browser.Identifier != "aws.browser.v1" {
		t.Errorf("Browser.Identifier = %q", cfg.Browser.Identifier)
	}
	if cfg.Browser.SessionTimeout != 3600 {
		t.Errorf("Browser.SessionTimeout = %d, want 3600", cfg.Browser.SessionTimeout)
	}
	if cfg.Browser.LiveViewExpiry != 300 {
		t.Errorf("Browser.LiveViewExpiry = %d, want 300", cfg.Browser.LiveViewExpiry)
	}
	if cfg.Interpreter.Identifier != "aws.codeinterpreter.v1" {
		t.Errorf("Interpreter.Identifier = %q", cfg.Interpreter.Identifier)
	}
	if cfg.Interpreter.SessionTimeout != 900 {
		t.Errorf("Interpreter.SessionTimeout = %d, want 900", cfg.Interpreter.SessionTimeout)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("Observability.Metrics = %+v", cfg.Observability.Metrics)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Region falls back to us-west-2 when nothing is set.
	if cfg.Genesis.Region != "us-west-2" {
		t.Errorf("Genesis.Region = %q, want us-west-2", cfg.Genesis.Region)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
genesis:
  region: eu-west-1
  api_key: gk-yaml
browser:
  session_timeout: 1800
tools:
  enabled:
    - browser_start
    - browser_stop
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Genesis.Region != "eu-west-1" {
		t.Errorf("Genesis.Region = %q, want eu-west-1", cfg.Genesis.Region)
	}
	if cfg.Genesis.APIKey != "gk-yaml" {
		t.Errorf("Genesis.APIKey = %q", cfg.Genesis.APIKey)
	}
	if cfg.Browser.SessionTimeout != 1800 {
		t.Errorf("Browser.SessionTimeout = %d, want 1800", cfg.Browser.SessionTimeout)
	}
	// Unset YAML fields keep their defaults.
	if cfg.Interpreter.SessionTimeout != 900 {
		t.Errorf("Interpreter.SessionTimeout = %d, want default 900", cfg.Interpreter.SessionTimeout)
	}
	if len(cfg.Tools.Enabled) != 2 {
		t.Errorf("Tools.Enabled = %v", cfg.Tools.Enabled)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENESIS_REGION", "ap-southeast-2")
	t.Setenv("GENESIS_API_KEY", "gk-env")
	t.Setenv("GENESIS_PORT", "9999")
	t.Setenv("GENESIS_TOOLS", "browser_start, browser_view")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Genesis.Region != "ap-southeast-2" {
		t.Errorf("Genesis.Region = %q", cfg.Genesis.Region)
	}
	if cfg.Genesis.APIKey != "gk-env" {
		t.Errorf("Genesis.APIKey = %q", cfg.Genesis.APIKey)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	want := []string{"browser_start", "browser_view"}
	if len(cfg.Tools.Enabled) != len(want) {
		t.Fatalf("Tools.Enabled = %v, want %v", cfg.Tools.Enabled, want)
	}
	for i, name := range want {
		if cfg.Tools.Enabled[i] != name {
			t.Errorf("Tools.Enabled[%d] = %q, want %q", i, cfg.Tools.Enabled[i], name)
		}
	}
}

func TestLoad_AWSRegionFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-east-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Genesis.Region != "us-east-1" {
		t.Errorf("Genesis.Region = %q, want us-east-1 from AWS_REGION", cfg.Genesis.Region)
	}
}

func TestLoad_AWSDefaultRegionFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_DEFAULT_REGION", "us-east-2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Genesis.Region != "us-east-2" {
		t.Errorf("Genesis.Region = %q, want us-east-2 from AWS_DEFAULT_REGION", cfg.Genesis.Region)
	}
}

func TestLoad_RegionPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENESIS_REGION", "eu-north-1")
	t.Setenv("AWS_REGION", "us-east-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Genesis.Region != "eu-north-1" {
		t.Errorf("Genesis.Region = %q, GENESIS_REGION should win", cfg.Genesis.Region)
	}
}

func TestLoad_FileReferences(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "api-key")
	if err := os.WriteFile(keyFile, []byte("gk-from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	signFile := filepath.Join(dir, "ws-key")
	if err := os.WriteFile(signFile, []byte("  sign-secret  "), 0o600); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "config.yaml")
	content := `
genesis:
  region: us-west-2
  api_key_file: ` + keyFile + `
  ws_signing_key_file: ` + signFile + `
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Genesis.APIKey != "gk-from-file" {
		t.Errorf("Genesis.APIKey = %q, want trimmed file content", cfg.Genesis.APIKey)
	}
	if cfg.Genesis.WSSigningKey != "sign-secret" {
		t.Errorf("Genesis.WSSigningKey = %q, want trimmed file content", cfg.Genesis.WSSigningKey)
	}
}

func TestLoad_MissingKeyFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
genesis:
  region: us-west-2
  api_key_file: /nonexistent/key
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
	if !strings.Contains(err.Error(), "api_key_file") {
		t.Errorf("error = %v, want api_key_file mention", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) { c.Genesis.Region = "us-west-2" },
			wantErr: "",
		},
		{
			name:    "missing region and endpoint",
			mutate:  func(c *Config) {},
			wantErr: "genesis.region or genesis.endpoint",
		},
		{
			name: "endpoint without region is fine",
			mutate: func(c *Config) {
				c.Genesis.Endpoint = "http://localhost:7070"
			},
			wantErr: "",
		},
		{
			name: "bad port",
			mutate: func(c *Config) {
				c.Genesis.Region = "us-west-2"
				c.Server.Port = 0
			},
			wantErr: "server.port",
		},
		{
			name: "bad session timeout",
			mutate: func(c *Config) {
				c.Genesis.Region = "us-west-2"
				c.Browser.SessionTimeout = -1
			},
			wantErr: "browser.session_timeout",
		},
		{
			name: "auth enabled without credentials",
			mutate: func(c *Config) {
				c.Genesis.Region = "us-west-2"
				c.Server.Auth.Enabled = true
			},
			wantErr: "server.auth is enabled",
		},
		{
			name: "api key entry missing subject",
			mutate: func(c *Config) {
				c.Genesis.Region = "us-west-2"
				c.Server.Auth.Enabled = true
				c.Server.Auth.APIKeys = []APIKeyEntry{{Key: "gk-1"}}
			},
			wantErr: "key and subject are required",
		},
		{
			name: "unknown enabled tool",
			mutate: func(c *Config) {
				c.Genesis.Region = "us-west-2"
				c.Tools.Enabled = []string{"browser_start", "rm_rf"}
			},
			wantErr: `unknown tool "rm_rf"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfigFile(t *testing.T) {
	clearEnv(t)

	// Explicit path wins.
	if got := discoverConfigFile("/explicit/path.yaml"); got != "/explicit/path.yaml" {
		t.Errorf("explicit path = %q", got)
	}

	// GENESIS_CONFIG is next.
	t.Setenv("GENESIS_CONFIG", "/env/path.yaml")
	if got := discoverConfigFile(""); got != "/env/path.yaml" {
		t.Errorf("env path = %q", got)
	}
}
