package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/thicket/internal/presentation/graph"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
)

// ErrRejected is returned by Check when at least one input was rejected.
var ErrRejected = errors.New("one or more inputs were rejected")

// Check prints one verdict line per input, followed by the trace when
// trace is set.
func Check(ctx context.Context, engine ports.Simulator, inputs []string, out io.Writer, trace bool) error {
	rejected := 0
	for _, raw := range inputs {
		input, err := runner.SanitizeInput(raw)
		if err != nil {
			return fmt.Errorf("input %q: %w", raw, err)
		}

		v := runner.Verdict{Input: input}
		if trace {
			v.Trace = engine.Trace(ctx, input)
			v.Accepted = v.Trace.Accepted
		} else {
			v.Accepted = engine.Accepts(ctx, input)
		}

		fmt.Fprintf(out, "%s\t%q\n", runner.PlainVerdict(v), input)
		if v.Trace != nil {
			io.WriteString(out, runner.FormatTrace(v.Trace))
		}
		if !v.Accepted {
			rejected++
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRejected, rejected, len(inputs))
	}
	return nil
}

// ReadInputs returns the lines of r, trimmed, stopping at the first
// sentinel word.
func ReadInputs(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), runner.MaxInputSize()+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == runner.ExitWord || line == runner.QuitWord {
			break
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inputs: %w", err)
	}
	return inputs, nil
}

// Inspect writes the automaton summary through render.
func Inspect(engine ports.Simulator, out io.Writer, render func(string) (string, error)) error {
	summary := tui.Summary(engine.Definition())
	rendered, err := render(summary)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// WriteGraph writes the Mermaid diagram. With withInput set, the states
// visited and active while reading input are highlighted.
func WriteGraph(ctx context.Context, engine ports.Simulator, out io.Writer, input string, withInput bool) error {
	var overlay *graph.GraphOverlay
	if withInput {
		clean, err := runner.SanitizeInput(input)
		if err != nil {
			return fmt.Errorf("input %q: %w", input, err)
		}
		overlay = graph.OverlayFromTrace(engine.Trace(ctx, clean))
	}
	_, err := io.WriteString(out, graph.GenerateMermaid(engine.Definition(), overlay))
	return err
}
