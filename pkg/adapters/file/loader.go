// Package file provides filesystem adapters: a definition loader that picks
// its decoder by file extension, and a JSON transcript store.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/thicket/internal/compiler"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
)

// Loader implements ports.DefinitionLoader for .json, .yaml/.yml and .hcl files.
type Loader struct {
	path          string
	epsilonMarker string
	logger        *slog.Logger
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithEpsilonMarker reads the given label key as an epsilon move.
// See compiler.WithEpsilonMarker.
func WithEpsilonMarker(marker string) LoaderOption {
	return func(l *Loader) {
		l.epsilonMarker = marker
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader for the definition stored at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:   path,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the configured source path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and compiles the definition.
// When the document has no name, the file base name (without extension) is used.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "" {
		return nil, fmt.Errorf("definition path is required")
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	var opts []compiler.Option
	if l.epsilonMarker != "" {
		opts = append(opts, compiler.WithEpsilonMarker(l.epsilonMarker))
	}
	c := compiler.New(opts...)

	ext := strings.ToLower(filepath.Ext(l.path))
	var def *domain.Definition
	switch ext {
	case ".json":
		def, err = c.CompileJSON(data)
	case ".yaml", ".yml":
		def, err = c.CompileYAML(data)
	case ".hcl":
		def, err = c.CompileHCL(data, l.path)
	default:
		return nil, fmt.Errorf("unsupported definition format %q (want .json, .yaml, .yml or .hcl)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", l.path, err)
	}

	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(l.path), filepath.Ext(l.path))
	}

	l.logger.Debug("Definition loaded",
		"path", l.path,
		"format", strings.TrimPrefix(ext, "."),
		"start", def.Start,
		"accept_states", def.Accept.Len(),
		"transitions", def.TransitionCount(),
	)
	return def, nil
}
