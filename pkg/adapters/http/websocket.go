package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/thicket/pkg/runner"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsError struct {
	Error string `json:"error"`
}

// wsHandler adapts one websocket connection to runner.IOHandler. Every text
// message is one query; every verdict is one JSON message.
type wsHandler struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (h *wsHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, message, err := h.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return "", io.EOF
		}
		return "", err
	}
	return runner.DecodeInput(strings.TrimSpace(string(message))), nil
}

func (h *wsHandler) Verdict(ctx context.Context, v runner.Verdict) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.WriteJSON(v)
}

func (h *wsHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.WriteJSON(wsError{Error: msg})
}

// Stream handles GET /ws: an interactive session over a websocket, driven
// by the same loop as the terminal runner. Query parameters session_id and
// trace configure recording and traces.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID != "" && s.Sessions == nil {
		http.Error(w, "Sessions are disabled", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	opts := []runner.Option{
		runner.WithEngine(s.Engine),
		runner.WithInputHandler(&wsHandler{conn: conn}),
		runner.WithLogger(s.logger),
		runner.WithTrace(r.URL.Query().Get("trace") == "true"),
	}
	if sessionID != "" {
		opts = append(opts, runner.WithSessions(s.Sessions), runner.WithSessionID(sessionID))
	}

	s.logger.Debug("Websocket session started", "session_id", sessionID)
	err = runner.NewRunner(opts...).Run(r.Context())

	var closeErr *websocket.CloseError
	if err != nil && !errors.As(err, &closeErr) {
		s.logger.Warn("Websocket session ended with error", "err", err)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
