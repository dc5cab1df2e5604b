package runner

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
)

// Verdict is the outcome of one query as presented to the user.
type Verdict struct {
	Input    string        `json:"input"`
	Accepted bool          `json:"accepted"`
	Trace    *domain.Trace `json:"trace,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Input reads the next query. It returns io.EOF when the source is
	// exhausted and ctx.Err() when ctx is done first.
	Input(ctx context.Context) (string, error)

	// Verdict presents the outcome of a query.
	Verdict(ctx context.Context, v Verdict) error

	// SystemOutput presents a meta-message (e.g. a rejected input line).
	SystemOutput(ctx context.Context, msg string) error
}
