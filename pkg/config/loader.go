package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, GENESIS_CONFIG env, ./config.yaml, /etc/genesis/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. GENESIS_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/genesis/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check GENESIS_CONFIG env var.
	if envPath := os.Getenv("GENESIS_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/genesis/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
// The region additionally falls back to the conventional
// AWS_REGION/AWS_DEFAULT_REGION variables, matching the service's
// own tooling.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GENESIS_REGION"); v != "" {
		cfg.Genesis.Region = v
	}
	if cfg.Genesis.Region == "" {
		if v := os.Getenv("AWS_REGION"); v != "" {
			cfg.Genesis.Region = v
		} else if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
			cfg.Genesis.Region = v
		}
	}
	if v := os.Getenv("GENESIS_ENDPOINT"); v != "" {
		cfg.Genesis.Endpoint = v
	}
	if v := os.Getenv("GENESIS_API_KEY"); v != "" {
		cfg.Genesis.APIKey = v
	}
	if v := os.Getenv("GENESIS_WS_SIGNING_KEY"); v != "" {
		cfg.Genesis.WSSigningKey = v
	}
	if v := os.Getenv("GENESIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GENESIS_BROWSER_IDENTIFIER"); v != "" {
		cfg.Browser.Identifier = v
	}
	if v := os.Getenv("GENESIS_INTERPRETER_IDENTIFIER"); v != "" {
		cfg.Interpreter.Identifier = v
	}

	// GENESIS_TOOLS: comma-separated list of enabled tool names.
	if v := os.Getenv("GENESIS_TOOLS"); v != "" {
		var enabled []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				enabled = append(enabled, name)
			}
		}
		cfg.Tools.Enabled = enabled
	}

	// Final region fallback.
	if cfg.Genesis.Region == "" {
		cfg.Genesis.Region = "us-west-2"
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// genesis.api_key_file -> genesis.api_key
	if cfg.Genesis.APIKeyFile != "" && cfg.Genesis.APIKey == "" {
		val, err := readSecretFile(cfg.Genesis.APIKeyFile)
		if err != nil {
			return fmt.Errorf("genesis.api_key_file: %w", err)
		}
		cfg.Genesis.APIKey = val
	}

	// genesis.ws_signing_key_file -> genesis.ws_signing_key
	if cfg.Genesis.WSSigningKeyFile != "" && cfg.Genesis.WSSigningKey == "" {
		val, err := readSecretFile(cfg.Genesis.WSSigningKeyFile)
		if err != nil {
			return fmt.Errorf("genesis.ws_signing_key_file: %w", err)
		}
		cfg.Genesis.WSSigningKey = val
	}

	// server.auth.jwt_secret_file -> server.auth.jwt_secret
	if cfg.Server.Auth.JWTSecretFile != "" && cfg.Server.Auth.JWTSecret == "" {
		val, err := readSecretFile(cfg.Server.Auth.JWTSecretFile)
		if err != nil {
			return fmt.Errorf("server.auth.jwt_secret_file: %w", err)
		}
		cfg.Server.Auth.JWTSecret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
