// Command mcp-server exposes remote sandbox sessions (browser and code
// interpreter) as MCP tools over streamable HTTP.
//
// Configuration is loaded from a YAML file plus GENESIS_* environment
// variables; see the config package for the full list. The most common
// settings:
//
//	GENESIS_REGION     - Service region (falls back to AWS_REGION, then us-west-2)
//	GENESIS_ENDPOINT   - Explicit endpoint override (e.g. a local mock)
//	GENESIS_API_KEY    - API key for the remote service
//	GENESIS_PORT       - Listen port (default: 8080)
//	GENESIS_TOOLS      - Comma-separated list of enabled tools (default: all)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genesistools/genesis/pkg/api"
	"github.com/genesistools/genesis/pkg/auth"
	"github.com/genesistools/genesis/pkg/auth/apikey"
	authjwt "github.com/genesistools/genesis/pkg/auth/jwt"
	"github.com/genesistools/genesis/pkg/auth/noop"
	"github.com/genesistools/genesis/pkg/config"
	"github.com/genesistools/genesis/pkg/debug"
	"github.com/genesistools/genesis/pkg/genesis"
	"github.com/genesistools/genesis/pkg/observability"
	"github.com/genesistools/genesis/pkg/tools"
	"github.com/genesistools/genesis/pkg/tools/builtins/browser"
	"github.com/genesistools/genesis/pkg/tools/builtins/codeinterpreter"
	"github.com/genesistools/genesis/pkg/tools/registry"
)

const serverVersion = "v0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init("", "")

	// Both sandbox clients share the remote service connection settings.
	gcfg := genesis.Config{
		Region:       cfg.Genesis.Region,
		Endpoint:     cfg.Genesis.Endpoint,
		APIKey:       cfg.Genesis.APIKey,
		WSSigningKey: []byte(cfg.Genesis.WSSigningKey),
	}

	reg := registry.New()
	reg.Register(browser.New(genesis.NewBrowserClient(gcfg), browser.Config{
		Identifier:     cfg.Browser.Identifier,
		SessionTimeout: cfg.Browser.SessionTimeout,
		LiveViewExpiry: cfg.Browser.LiveViewExpiry,
	}))
	reg.Register(codeinterpreter.New(genesis.NewCodeInterpreterClient(gcfg), codeinterpreter.Config{
		Identifier:     cfg.Interpreter.Identifier,
		SessionTimeout: cfg.Interpreter.SessionTimeout,
	}))

	server := mcp.NewServer(
		&mcp.Implementation{Name: "genesis-tools", Version: serverVersion},
		nil,
	)
	if err := addRegistryTools(server, reg, cfg.Tools.Enabled); err != nil {
		return fmt.Errorf("registering MCP tools: %w", err)
	}

	// Serve via streamable HTTP on /mcp, provider routes and health
	// alongside, all wrapped with metrics middleware.
	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/tools/", reg.HTTPHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	handler := authMiddleware(cfg.Server.Auth)(mux)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      observability.MetricsMiddleware(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mcp server starting",
			"port", cfg.Server.Port,
			"region", cfg.Genesis.Region,
			"endpoint", cfg.Genesis.Endpoint,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Stop any live sandbox sessions before exiting.
		if closeErr := reg.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	case err := <-errCh:
		reg.Close()
		return err
	}
}

// authMiddleware builds the inbound auth chain from config. With auth
// disabled the chain accepts everyone as anonymous, so the middleware
// is always in place and rate limits still apply if configured.
func authMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	chain := &auth.AuthChain{DefaultDecision: auth.No}
	if !cfg.Enabled {
		chain.Authenticators = []auth.Authenticator{&noop.Authenticator{}}
	} else {
		if len(cfg.APIKeys) > 0 {
			var entries []apikey.RawKeyEntry
			for _, e := range cfg.APIKeys {
				entries = append(entries, apikey.RawKeyEntry{
					Key: e.Key,
					Identity: auth.Identity{
						Subject:     e.Subject,
						ServiceTier: e.Tier,
						Scopes:      e.Scopes,
					},
				})
			}
			chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
		}

		if cfg.JWTSecret != "" {
			chain.Authenticators = append(chain.Authenticators, authjwt.New(authjwt.Config{
				Secret:   []byte(cfg.JWTSecret),
				Issuer:   cfg.JWTIssuer,
				Audience: cfg.JWTAudience,
			}))
		}
	}

	var limiter auth.RateLimiter
	if cfg.RateLimit.DefaultRPM > 0 || len(cfg.RateLimit.Tiers) > 0 {
		tiers := make(map[string]auth.TierConfig, len(cfg.RateLimit.Tiers))
		for name, rpm := range cfg.RateLimit.Tiers {
			tiers[name] = auth.TierConfig{RequestsPerMinute: rpm}
		}
		limiter = auth.NewInProcessLimiter(tiers, cfg.RateLimit.DefaultRPM)
	}

	return auth.Middleware(chain, limiter, auth.DefaultBypassEndpoints)
}

// addRegistryTools bridges the registry's discovered tools onto the MCP
// server. Tools outside the enabled list are not advertised, and the
// execution path filters again so a disabled tool can never run.
func addRegistryTools(server *mcp.Server, reg *registry.FunctionRegistry, enabled []string) error {
	enabledSet := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = true
	}

	for _, td := range reg.DiscoveredTools() {
		if len(enabled) > 0 && !enabledSet[td.Name] {
			slog.Info("tool not enabled, skipping", "tool", td.Name)
			continue
		}

		var schema map[string]any
		if len(td.Parameters) > 0 {
			if err := json.Unmarshal(td.Parameters, &schema); err != nil {
				return fmt.Errorf("tool %s has invalid parameter schema: %w", td.Name, err)
			}
		}

		name := td.Name
		server.AddTool(
			&mcp.Tool{
				Name:        name,
				Description: td.Description,
				InputSchema: schema,
			},
			func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				call := tools.ToolCall{
					ID:        api.NewCallID(),
					Name:      name,
					Arguments: string(req.Params.Arguments),
				}

				filtered := tools.FilterEnabledTools([]tools.ToolCall{call}, enabled)
				if len(filtered.Rejected) > 0 {
					return toolResultToMCP(&filtered.Rejected[0]), nil
				}

				result, err := reg.Execute(ctx, call)
				if err != nil {
					return nil, err
				}
				return toolResultToMCP(result), nil
			},
		)
	}
	return nil
}

// toolResultToMCP converts an internal tool result to its MCP form.
func toolResultToMCP(result *tools.ToolResult) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: result.Output}},
		IsError: result.IsError,
	}
}
