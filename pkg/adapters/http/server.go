// Package http exposes an automaton over a JSON API served by chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/presentation/graph"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/observability"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimulateRequest is the body of POST /simulate.
type SimulateRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
	Trace     bool   `json:"trace,omitempty"`
}

// SimulateResponse is the reply of POST /simulate.
type SimulateResponse struct {
	Input     string        `json:"input"`
	Accepted  bool          `json:"accepted"`
	SessionID string        `json:"session_id,omitempty"`
	Trace     *domain.Trace `json:"trace,omitempty"`
}

// Server serves one simulator.
type Server struct {
	Engine   ports.Simulator
	Sessions *session.Manager
	Metrics  *observability.Metrics

	spec   *openapi3.T
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables session recording and the /sessions endpoints.
func WithSessions(mgr *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = mgr
	}
}

// WithMetrics exposes the collectors on /metrics. The engine must already
// be wired with metrics.Hooks().
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the router. It fails only if the embedded OpenAPI
// document does not validate.
func NewHandler(engine ports.Simulator, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine: engine,
		spec:   spec,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/simulate", s.Simulate)
	r.Get("/automaton", s.GetAutomaton)
	r.Get("/graph", s.GetGraph)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/ws", s.Stream)

	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Thicket API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Simulate handles the POST /simulate request.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	// Room for a maximal input plus JSON escaping and the other fields.
	r.Body = http.MaxBytesReader(w, r.Body, int64(runner.MaxInputSize())*6+1024)

	body, err := s.decodeSimulate(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		s.logger.Warn("Simulate: Invalid request body", "err", err)
		return
	}

	input, err := runner.SanitizeInput(body.Input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("Simulate: Input rejected", "err", err, "size", len(body.Input))
		return
	}

	if body.SessionID != "" && s.Sessions == nil {
		http.Error(w, "Sessions are disabled", http.StatusBadRequest)
		return
	}

	resp := SimulateResponse{Input: input, SessionID: body.SessionID}
	if body.Trace {
		resp.Trace = s.Engine.Trace(r.Context(), input)
		resp.Accepted = resp.Trace.Accepted
	} else {
		resp.Accepted = s.Engine.Accepts(r.Context(), input)
	}

	if body.SessionID != "" {
		_, err := s.Sessions.Record(r.Context(), body.SessionID, s.Engine.Definition().Name, domain.Query{
			Input:    input,
			Accepted: resp.Accepted,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
			s.logger.Error("Simulate: Session record failed", "err", err, "session_id", body.SessionID)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// decodeSimulate checks the body against the SimulateRequest schema
// before binding it.
func (s *Server) decodeSimulate(r *http.Request) (*SimulateRequest, error) {
	var raw any
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	if schema := requestSchema(s.spec, "SimulateRequest"); schema != nil {
		if err := schema.VisitJSON(raw); err != nil {
			return nil, err
		}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("expected a JSON object")
	}

	body := &SimulateRequest{}
	if v, ok := obj["input"].(string); ok {
		body.Input = v
	}
	if v, ok := obj["session_id"].(string); ok {
		body.SessionID = v
	}
	if v, ok := obj["trace"].(bool); ok {
		body.Trace = v
	}
	return body, nil
}

// GetAutomaton handles the GET /automaton request.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Definition())
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if r.URL.Query().Has("input") {
		input, err := runner.SanitizeInput(r.URL.Query().Get("input"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
			return
		}
		overlay = graph.OverlayFromTrace(s.Engine.Trace(r.Context(), input))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Engine.Definition(), overlay)))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !s.requireSessions(w) {
		return
	}
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListSessions failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if !s.requireSessions(w) {
		return
	}
	id := chi.URLParam(r, "id")
	transcript, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetSession failed", "err", err, "session_id", id)
		return
	}
	s.writeJSON(w, http.StatusOK, transcript)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.requireSessions(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("DeleteSession failed", "err", err, "session_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "thicket-http",
		"version":     strings.TrimSpace(thicket.Version),
		"api_version": apiVersion,
		"automaton":   s.Engine.Definition().Name,
	})
}

func (s *Server) requireSessions(w http.ResponseWriter) bool {
	if s.Sessions == nil {
		http.Error(w, "Sessions are disabled", http.StatusNotImplemented)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
