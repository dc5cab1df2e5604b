package ports

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// Simulator is the query surface shared by every adapter.
// Implementations must be safe for concurrent use.
type Simulator interface {
	// Accepts decides membership of input.
	Accepts(ctx context.Context, input string) bool

	// Trace simulates input and returns every intermediate state set.
	Trace(ctx context.Context, input string) *domain.Trace

	// Definition returns the read-only automaton.
	Definition() *domain.Definition
}
