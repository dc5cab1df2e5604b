// Package memory provides in-process adapters: a definition loader over a
// pre-built definition and a transcript store over a map.
package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/thicket/pkg/domain"
)

// Loader implements ports.DefinitionLoader over an already built definition.
type Loader struct {
	def *domain.Definition
}

// NewLoader wraps def. The caller must not mutate def afterwards.
func NewLoader(def *domain.Definition) *Loader {
	return &Loader{def: def}
}

// Load returns the wrapped definition.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	if l.def == nil {
		return nil, fmt.Errorf("memory loader has no definition")
	}
	if l.def.Start == "" {
		return nil, fmt.Errorf("definition has no start state")
	}
	return l.def, nil
}
