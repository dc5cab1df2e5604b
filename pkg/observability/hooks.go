package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/thicket/pkg/domain"
)

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQueryStart: func(ctx context.Context, e *domain.QueryEvent) {
			logger.Debug("Query Start", "input", e.Input, "initial", e.Initial.Sorted())
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step", "position", e.Position, "symbol", string(e.Symbol), "states", e.States.Sorted())
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			logger.Debug("Verdict",
				"input", e.Input,
				"accepted", e.Accepted,
				"halted", e.Halted,
				"consumed", e.Consumed,
				"duration", e.Duration,
			)
		},
	}
}

// Chain merges hook sets; each event is delivered to every set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var starts []func(context.Context, *domain.QueryEvent)
	var steps []func(context.Context, *domain.StepEvent)
	var verdicts []func(context.Context, *domain.VerdictEvent)
	for _, h := range sets {
		if h.OnQueryStart != nil {
			starts = append(starts, h.OnQueryStart)
		}
		if h.OnStep != nil {
			steps = append(steps, h.OnStep)
		}
		if h.OnVerdict != nil {
			verdicts = append(verdicts, h.OnVerdict)
		}
	}

	var out domain.LifecycleHooks
	if len(starts) > 0 {
		out.OnQueryStart = func(ctx context.Context, e *domain.QueryEvent) {
			for _, fn := range starts {
				fn(ctx, e)
			}
		}
	}
	if len(steps) > 0 {
		out.OnStep = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range steps {
				fn(ctx, e)
			}
		}
	}
	if len(verdicts) > 0 {
		out.OnVerdict = func(ctx context.Context, e *domain.VerdictEvent) {
			for _, fn := range verdicts {
				fn(ctx, e)
			}
		}
	}
	return out
}
