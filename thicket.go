package thicket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

// Engine is the high-level entry point for the Thicket library.
// It wraps the internal runtime and is safe for concurrent use.
type Engine struct {
	runtime       *runtime.Engine
	loader        ports.DefinitionLoader
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	epsilonMarker string
	Name          string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom DefinitionLoader, bypassing the file loader.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithDefinition uses a definition built in code.
func WithDefinition(def *domain.Definition) Option {
	return WithLoader(memory.NewLoader(def))
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEpsilonMarker makes the file loader read marker as an epsilon label
// key, in addition to "". It has no effect with a custom loader.
func WithEpsilonMarker(marker string) Option {
	return func(e *Engine) {
		e.epsilonMarker = marker
	}
}

// New loads the automaton and returns a ready engine.
// By default the definition is read from the document at path; with
// WithLoader or WithDefinition path only names the engine and may be empty.
func New(path string, opts ...Option) (*Engine, error) {
	return NewWithContext(context.Background(), path, opts...)
}

// NewWithContext is New with a caller-supplied context for loading.
func NewWithContext(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.loader == nil {
		if path == "" {
			return nil, errors.New("path is required when no custom loader is provided")
		}
		eng.loader = file.NewLoader(path,
			file.WithEpsilonMarker(eng.epsilonMarker),
			file.WithLogger(eng.logger),
		)
	}

	def, err := eng.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load automaton: %w", err)
	}

	switch {
	case def.Name != "":
		eng.Name = def.Name
	case path != "":
		eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("automaton", eng.Name)
	}

	eng.runtime = runtime.NewEngine(def,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)

	eng.logger.Debug("Automaton loaded",
		"start", def.Start,
		"states", def.States().Len(),
		"transitions", def.TransitionCount(),
	)
	return eng, nil
}

// Accepts decides whether the automaton accepts input.
func (e *Engine) Accepts(ctx context.Context, input string) bool {
	return e.runtime.Accepts(ctx, input)
}

// Trace simulates input and returns every intermediate state set.
func (e *Engine) Trace(ctx context.Context, input string) *domain.Trace {
	return e.runtime.Trace(ctx, input)
}

// Definition returns the loaded automaton. Callers must not mutate it.
func (e *Engine) Definition() *domain.Definition {
	return e.runtime.Definition()
}

// Loader returns the DefinitionLoader used by the engine.
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// Simulate is the pure membership function: it reports whether def
// accepts input, without hooks or logging.
func Simulate(def *domain.Definition, input string) bool {
	return runtime.Simulate(def, input)
}

var _ ports.Simulator = (*Engine)(nil)
