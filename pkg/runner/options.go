package runner

import (
	"log/slog"

	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the simulator queried for every input line.
func WithEngine(engine ports.Simulator) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithSessions records every query in a transcript through mgr.
// Requires WithSessionID.
func WithSessions(mgr *session.Manager) Option {
	return func(r *Runner) {
		r.Sessions = mgr
	}
}

// WithSessionID names the transcript queries are recorded in.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithTrace attaches the full state-set trace to every verdict.
func WithTrace(enabled bool) Option {
	return func(r *Runner) {
		r.Trace = enabled
	}
}
