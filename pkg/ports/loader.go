package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// DefinitionLoader defines how the engine obtains its automaton.
// This allows the source (file, memory, remote) to be decoupled.
type DefinitionLoader interface {
	// Load parses the source and returns an immutable definition, or a
	// descriptive error when the source is unreadable or malformed.
	Load(ctx context.Context) (*domain.Definition, error)
}
