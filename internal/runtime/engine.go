package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
)

// Engine answers membership queries against one shared, read-only
// definition. It holds no per-query state and is safe for concurrent use.
type Engine struct {
	def    *domain.Definition
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine bound to def.
func NewEngine(def *domain.Definition, opts ...EngineOption) *Engine {
	e := &Engine{
		def:    def,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Definition returns the shared definition. Callers must not mutate it.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

// Accepts decides whether the automaton accepts input.
func (e *Engine) Accepts(ctx context.Context, input string) bool {
	return e.query(ctx, input, nil).Accepted
}

// Trace simulates input and returns the full record of the run.
func (e *Engine) Trace(ctx context.Context, input string) *domain.Trace {
	trace := &domain.Trace{Steps: []domain.TraceStep{}}
	return e.query(ctx, input, trace)
}

func (e *Engine) query(ctx context.Context, input string, trace *domain.Trace) *domain.Trace {
	started := time.Now()

	var onStep func(int, domain.TraceStep)
	if trace != nil || e.hooks.OnStep != nil {
		onStep = func(pos int, step domain.TraceStep) {
			if trace != nil {
				trace.Steps = append(trace.Steps, step)
			}
			if e.hooks.OnStep != nil {
				e.hooks.OnStep(ctx, &domain.StepEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
					Position:  pos,
					Symbol:    step.Symbol,
					States:    step.Closed,
				})
			}
		}
	}

	initial := Initial(e.def)
	if e.hooks.OnQueryStart != nil {
		e.hooks.OnQueryStart(ctx, &domain.QueryEvent{
			EventBase: domain.EventBase{Timestamp: started, Type: domain.EventQueryStart},
			Input:     input,
			Initial:   initial,
		})
	}

	res := walkFrom(e.def, initial, input, true, onStep)
	accepted := res.accepted(e.def)

	e.logger.Debug("Query evaluated",
		"input_len", len(input),
		"consumed", res.consumed,
		"halted", res.halted,
		"final_states", res.final.Len(),
		"accepted", accepted,
	)

	if e.hooks.OnVerdict != nil {
		e.hooks.OnVerdict(ctx, &domain.VerdictEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventVerdict},
			Input:     input,
			Accepted:  accepted,
			Halted:    res.halted,
			Consumed:  res.consumed,
			Duration:  time.Since(started),
		})
	}

	if trace == nil {
		trace = &domain.Trace{}
	}
	trace.Input = input
	trace.Initial = res.initial
	trace.Halted = res.halted
	trace.Accepted = accepted
	return trace
}
