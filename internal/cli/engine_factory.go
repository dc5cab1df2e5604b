package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/observability"
)

// EngineOptions holds the flags shared by every command that loads an automaton.
type EngineOptions struct {
	Path          string
	EpsilonMarker string
	Debug         bool
}

// CreateEngine loads the automaton with standard CLI conventions.
// Extra hooks (metrics) are chained after the debug hooks.
func CreateEngine(ctx context.Context, opts EngineOptions, logger *slog.Logger, extra ...domain.LifecycleHooks) (*thicket.Engine, error) {
	engineOpts := []thicket.Option{
		thicket.WithLogger(logger),
		thicket.WithEpsilonMarker(opts.EpsilonMarker),
	}

	hooks := extra
	if opts.Debug {
		hooks = append([]domain.LifecycleHooks{observability.DebugHooks(logger)}, extra...)
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, thicket.WithLifecycleHooks(observability.Chain(hooks...)))
	}

	engine, err := thicket.NewWithContext(ctx, opts.Path, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing thicket: %w", err)
	}
	return engine, nil
}
