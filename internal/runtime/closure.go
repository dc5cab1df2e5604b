package runtime

import "github.com/aretw0/thicket/pkg/domain"

// EpsilonClosure returns the smallest superset of states that is closed under
// epsilon moves. The argument is not modified.
//
// A state is enqueued only when it first enters the result, so epsilon
// cycles terminate and each state is expanded at most once.
func EpsilonClosure(def *domain.Definition, states domain.StateSet) domain.StateSet {
	closure := states.Clone()
	stack := make([]string, 0, len(states))
	for st := range states {
		stack = append(stack, st)
	}

	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, dest := range def.Destinations(st, domain.Epsilon) {
			if closure.Add(dest) {
				stack = append(stack, dest)
			}
		}
	}
	return closure
}

// Move returns the states reachable from current by exactly one ordinary
// move labelled symbol. Epsilon closure is not applied.
func Move(def *domain.Definition, current domain.StateSet, symbol rune) domain.StateSet {
	label := domain.Consume(symbol)
	next := domain.NewStateSet()
	for st := range current {
		for _, dest := range def.Destinations(st, label) {
			next.Add(dest)
		}
	}
	return next
}

// Initial returns the epsilon closure of the start state.
func Initial(def *domain.Definition) domain.StateSet {
	return EpsilonClosure(def, domain.NewStateSet(def.Start))
}

// Advance consumes one symbol: Move followed by EpsilonClosure.
func Advance(def *domain.Definition, current domain.StateSet, symbol rune) domain.StateSet {
	return EpsilonClosure(def, Move(def, current, symbol))
}
