// Command mock-genesis runs a deterministic in-memory stand-in for the
// remote sandbox service, for local development and conformance
// testing of the MCP server. Browser sessions are tracked but have no
// real browser behind them; code executions echo a canned result.
//
// Configuration:
//
//	MOCK_PORT    - Listen port (default: 9090)
//	MOCK_API_KEY - If set, requests must carry it in X-Genesis-Api-Key
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	svc := newMockService(os.Getenv("MOCK_API_KEY"))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/browser/sessions", svc.handleCreateBrowser)
	mux.HandleFunc("POST /v1/browser/sessions/{id}/stop", svc.handleStopBrowser)
	mux.HandleFunc("POST /v1/browser/sessions/{id}/control/take", svc.handleTakeControl)
	mux.HandleFunc("POST /v1/browser/sessions/{id}/control/release", svc.handleReleaseControl)
	mux.HandleFunc("GET /v1/browser/sessions/{id}/live-view", svc.handleLiveView)
	mux.HandleFunc("POST /v1/interpreter/sessions", svc.handleCreateInterpreter)
	mux.HandleFunc("POST /v1/interpreter/sessions/{id}/stop", svc.handleStopInterpreter)
	mux.HandleFunc("POST /v1/interpreter/sessions/{id}/invoke", svc.handleInvoke)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: svc.auth(mux)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock genesis starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock genesis failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock genesis shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Service state ---

type session struct {
	ID         string
	Identifier string
	Name       string
	Timeout    int
	Controlled bool
	CreatedAt  time.Time
}

type mockService struct {
	apiKey string

	mu           sync.Mutex
	nextID       int
	browsers     map[string]*session
	interpreters map[string]*session
}

func newMockService(apiKey string) *mockService {
	return &mockService{
		apiKey:       apiKey,
		browsers:     make(map[string]*session),
		interpreters: make(map[string]*session),
	}
}

// auth enforces the API key when one is configured. The health
// endpoint is always open.
func (s *mockService) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.URL.Path != "/healthz" {
			if r.Header.Get("X-Genesis-Api-Key") != s.apiKey {
				writeError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *mockService) newSessionID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%08d", prefix, s.nextID)
}

// --- Request/response types ---

type createRequest struct {
	Identifier            string `json:"identifier"`
	Name                  string `json:"name"`
	SessionTimeoutSeconds int    `json:"session_timeout_seconds"`
}

type createResponse struct {
	SessionID string `json:"session_id"`
}

type invokeRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type invokeResponse struct {
	Status   string `json:"status"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// --- Browser handlers ---

func (s *mockService) handleCreateBrowser(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	s.mu.Lock()
	sess := &session{
		ID:         s.newSessionID("bs"),
		Identifier: req.Identifier,
		Name:       req.Name,
		Timeout:    req.SessionTimeoutSeconds,
		CreatedAt:  time.Now(),
	}
	s.browsers[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("browser session created", "session_id", sess.ID, "identifier", sess.Identifier)
	writeJSON(w, http.StatusOK, createResponse{SessionID: sess.ID})
}

func (s *mockService) handleStopBrowser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.browsers[id]
	delete(s.browsers, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such browser session: "+id)
		return
	}
	slog.Info("browser session stopped", "session_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *mockService) handleTakeControl(w http.ResponseWriter, r *http.Request) {
	s.setControl(w, r, true)
}

func (s *mockService) handleReleaseControl(w http.ResponseWriter, r *http.Request) {
	s.setControl(w, r, false)
}

func (s *mockService) setControl(w http.ResponseWriter, r *http.Request, controlled bool) {
	id := r.PathValue("id")

	s.mu.Lock()
	sess, ok := s.browsers[id]
	if ok {
		sess.Controlled = controlled
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such browser session: "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"controlled": controlled})
}

func (s *mockService) handleLiveView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.browsers[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such browser session: "+id)
		return
	}
	if r.URL.Query().Get("token") == "" {
		writeError(w, http.StatusForbidden, "missing presigned token")
		return
	}

	// A real deployment streams the session's display here. The mock
	// confirms the URL resolves.
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<html><body>live view of %s</body></html>\n", id)
}

// --- Interpreter handlers ---

func (s *mockService) handleCreateInterpreter(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	s.mu.Lock()
	sess := &session{
		ID:         s.newSessionID("ci"),
		Identifier: req.Identifier,
		Name:       req.Name,
		Timeout:    req.SessionTimeoutSeconds,
		CreatedAt:  time.Now(),
	}
	s.interpreters[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("interpreter session created", "session_id", sess.ID, "identifier", sess.Identifier)
	writeJSON(w, http.StatusOK, createResponse{SessionID: sess.ID})
}

func (s *mockService) handleStopInterpreter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.interpreters[id]
	delete(s.interpreters, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such interpreter session: "+id)
		return
	}
	slog.Info("interpreter session stopped", "session_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *mockService) handleInvoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.interpreters[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such interpreter session: "+id)
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, "method is required")
		return
	}

	// Deterministic execution: echo back what would run. Keeps client
	// integration tests stable without a real interpreter.
	code, _ := req.Params["code"].(string)
	resp := invokeResponse{Status: "completed"}
	switch req.Method {
	case "execute":
		resp.Stdout = "executed: " + strings.TrimSpace(code)
	default:
		resp.Stdout = fmt.Sprintf("invoked %s", req.Method)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
