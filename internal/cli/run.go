package cli

import (
	"errors"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	EngineOptions
	Store     StoreOptions
	Headless  bool
	JSON      bool
	Trace     bool
	Watch     bool
	SessionID string
}

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(opts RunOptions) error {
	if opts.Path == "" {
		return errors.New("an automaton file is required")
	}
	if opts.Watch {
		if opts.Headless || opts.JSON {
			return errors.New("--watch cannot be combined with --headless or --json")
		}
		return RunWatch(opts)
	}
	return RunSession(opts)
}
