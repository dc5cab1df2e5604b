// Package mcp exposes an automaton as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// AutomatonURI names the definition resource.
const AutomatonURI = "thicket://automaton"

// SimulateResult is the structured output of the simulate tool.
type SimulateResult struct {
	Input     string `json:"input" jsonschema_description:"The input after sanitization"`
	Accepted  bool   `json:"accepted" jsonschema_description:"Whether the automaton accepts the input"`
	SessionID string `json:"session_id,omitempty" jsonschema_description:"Session the query was recorded in"`
}

// TraceStepResult is one consumed symbol in a TraceResult.
type TraceStepResult struct {
	Symbol string   `json:"symbol" jsonschema_description:"The consumed symbol"`
	States []string `json:"states" jsonschema_description:"Active states after the symbol and epsilon closure"`
}

// TraceResult is the structured output of the trace tool.
type TraceResult struct {
	Input    string            `json:"input"`
	Accepted bool              `json:"accepted"`
	Halted   bool              `json:"halted" jsonschema_description:"True when no state remained active before the input ended"`
	Initial  []string          `json:"initial" jsonschema_description:"Epsilon closure of the start state"`
	Steps    []TraceStepResult `json:"steps"`
}

// Server wraps a simulator and exposes it as an MCP Server.
type Server struct {
	engine    ports.Simulator
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions lets the simulate tool record queries under a session_id.
func WithSessions(mgr *session.Manager) Option {
	return func(s *Server) {
		s.sessions = mgr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Simulator, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("thicket-mcp", strings.TrimSpace(thicket.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Decide whether the loaded automaton accepts an input string."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input string; each Unicode character is one symbol")),
		mcp.WithString("session_id", mcp.Description("Record the query in this session's transcript (optional)")),
		mcp.WithOutputSchema[SimulateResult](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	traceTool := mcp.NewTool("trace",
		mcp.WithDescription("Simulate an input and return the set of active states after every symbol."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input string; each Unicode character is one symbol")),
		mcp.WithOutputSchema[TraceResult](),
	)
	s.mcpServer.AddTool(traceTool, mcp.NewStructuredToolHandler(s.handleTrace))
}

func (s *Server) sanitizedInput(args map[string]interface{}) (string, error) {
	raw, ok := args["input"].(string)
	if !ok {
		return "", errors.New("input is required and must be a string")
	}
	clean, err := runner.SanitizeInput(raw)
	if err != nil {
		s.logger.Warn("MCP: Input rejected", "err", err, "size", len(raw))
		return "", fmt.Errorf("input rejected: %w", err)
	}
	return clean, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SimulateResult, error) {
	input, err := s.sanitizedInput(args)
	if err != nil {
		return SimulateResult{}, err
	}

	result := SimulateResult{
		Input:    input,
		Accepted: s.engine.Accepts(ctx, input),
	}

	if sessionID, _ := args["session_id"].(string); sessionID != "" {
		if s.sessions == nil {
			return SimulateResult{}, errors.New("sessions are disabled")
		}
		_, err := s.sessions.Record(ctx, sessionID, s.engine.Definition().Name, domain.Query{
			Input:    input,
			Accepted: result.Accepted,
		})
		if err != nil {
			return SimulateResult{}, fmt.Errorf("failed to record query: %w", err)
		}
		result.SessionID = sessionID
	}
	return result, nil
}

func (s *Server) handleTrace(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TraceResult, error) {
	input, err := s.sanitizedInput(args)
	if err != nil {
		return TraceResult{}, err
	}
	return toTraceResult(s.engine.Trace(ctx, input)), nil
}

func toTraceResult(t *domain.Trace) TraceResult {
	res := TraceResult{
		Input:    t.Input,
		Accepted: t.Accepted,
		Halted:   t.Halted,
		Initial:  t.Initial.Sorted(),
		Steps:    make([]TraceStepResult, len(t.Steps)),
	}
	for i, step := range t.Steps {
		res.Steps[i] = TraceStepResult{
			Symbol: string(step.Symbol),
			States: step.Closed.Sorted(),
		}
	}
	return res
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(AutomatonURI, "Loaded Automaton Definition",
		mcp.WithMIMEType("application/json"),
	), s.readAutomaton)
}

func (s *Server) readAutomaton(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Definition())
	if err != nil {
		return nil, fmt.Errorf("failed to encode automaton: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      AutomatonURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
