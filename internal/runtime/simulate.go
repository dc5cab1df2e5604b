package runtime

import "github.com/aretw0/thicket/pkg/domain"

// Simulate decides whether def accepts input. It is a pure, total function:
// unknown symbols and states contribute nothing and never cause an error.
func Simulate(def *domain.Definition, input string) bool {
	return walk(def, input, true, nil).accepted(def)
}

// Run simulates input and records every intermediate state set.
func Run(def *domain.Definition, input string) *domain.Trace {
	trace := &domain.Trace{
		Input: input,
		Steps: []domain.TraceStep{},
	}
	res := walk(def, input, true, func(_ int, step domain.TraceStep) {
		trace.Steps = append(trace.Steps, step)
	})
	trace.Initial = res.initial
	trace.Halted = res.halted
	trace.Accepted = res.accepted(def)
	return trace
}

type walkResult struct {
	initial  domain.StateSet
	final    domain.StateSet
	consumed int
	halted   bool
}

func (r walkResult) accepted(def *domain.Definition) bool {
	return r.final.Intersects(def.Accept)
}

// walk runs the subset simulation, calling onStep after every consumed
// symbol. With shortCircuit set, an empty state set stops the walk before
// the rest of the input is read; the verdict is the same either way because
// no move leaves the empty set.
func walk(def *domain.Definition, input string, shortCircuit bool, onStep func(pos int, step domain.TraceStep)) walkResult {
	return walkFrom(def, Initial(def), input, shortCircuit, onStep)
}

// walkFrom is walk starting from an already computed initial closure.
func walkFrom(def *domain.Definition, initial domain.StateSet, input string, shortCircuit bool, onStep func(pos int, step domain.TraceStep)) walkResult {
	res := walkResult{initial: initial}
	current := initial

	for _, symbol := range input {
		if shortCircuit && current.IsEmpty() {
			res.halted = true
			break
		}
		moved := Move(def, current, symbol)
		current = EpsilonClosure(def, moved)
		if onStep != nil {
			onStep(res.consumed, domain.TraceStep{Symbol: symbol, Moved: moved, Closed: current})
		}
		res.consumed++
	}

	res.final = current
	return res
}
