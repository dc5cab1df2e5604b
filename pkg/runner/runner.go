package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
)

// Sentinel words that end the loop. They are never simulated.
const (
	ExitWord = "exit"
	QuitWord = "quit"
)

// ErrNoEngine is returned by Run when no simulator was configured.
var ErrNoEngine = errors.New("runner: no engine configured")

// Runner drives the query loop over an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Sessions, when set together with SessionID, records every query.
	Sessions  *session.Manager
	SessionID string

	// Trace attaches the state-set trace to verdicts.
	Trace bool

	engine ports.Simulator
}

// NewRunner creates a Runner configured with opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run loops until the sentinel, end of input, or ctx cancellation.
// Interruption is not an error.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return ErrNoEngine
	}
	handler := r.Handler
	if handler == nil {
		// The default handler belongs to this run.
		h := NewTextHandler(os.Stdin, os.Stdout)
		defer h.Close()
		handler = h
	}

	for {
		line, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("Runner stopped", "reason", stopReason(ctx, err))
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if line == ExitWord || line == QuitWord {
			r.Logger.Debug("Runner stopped", "reason", "sentinel")
			return nil
		}

		input, err := SanitizeInput(line)
		if err != nil {
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		verdict := r.evaluate(ctx, input)

		if err := r.record(ctx, verdict); err != nil {
			return fmt.Errorf("critical persistence error: %w", err)
		}

		if err := handler.Verdict(ctx, verdict); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) evaluate(ctx context.Context, input string) Verdict {
	if r.Trace {
		trace := r.engine.Trace(ctx, input)
		return Verdict{Input: input, Accepted: trace.Accepted, Trace: trace}
	}
	return Verdict{Input: input, Accepted: r.engine.Accepts(ctx, input)}
}

func (r *Runner) record(ctx context.Context, v Verdict) error {
	if r.Sessions == nil || r.SessionID == "" {
		return nil
	}
	_, err := r.Sessions.Record(ctx, r.SessionID, r.engine.Definition().Name, domain.Query{
		Input:    v.Input,
		Accepted: v.Accepted,
	})
	return err
}

func stopReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "interrupted"
	}
	if errors.Is(err, io.EOF) {
		return "eof"
	}
	return "unknown"
}
