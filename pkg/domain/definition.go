package domain

import "sort"

// Definition is the declarative description of an automaton.
//
// A Definition is built once by a loader and never mutated afterwards, so a
// single value may be shared by any number of concurrent queries.
type Definition struct {
	// Name is an informational label, usually the source file name.
	Name string `json:"name,omitempty"`

	// Description is free text (markdown). The engine never reads it.
	Description string `json:"description,omitempty"`

	// Start is the initial state. It need not have outgoing transitions.
	Start string `json:"start_state"`

	// Accept holds the accepting states. It may be empty.
	Accept StateSet `json:"accept_states"`

	// Transitions maps a state to its labelled moves. States missing from
	// the map, and destinations that never appear as keys, are dead ends.
	Transitions map[string]map[Label][]string `json:"transitions"`
}

// NewDefinition starts a definition with the given start and accept states.
// Use AddTransition to populate it before sharing it.
func NewDefinition(start string, accept ...string) *Definition {
	return &Definition{
		Start:       start,
		Accept:      NewStateSet(accept...),
		Transitions: make(map[string]map[Label][]string),
	}
}

// AddTransition appends destinations for (from, label). It is a construction
// helper; calling it on a shared definition is a data race.
func (d *Definition) AddTransition(from string, label Label, to ...string) *Definition {
	if d.Transitions == nil {
		d.Transitions = make(map[string]map[Label][]string)
	}
	moves, ok := d.Transitions[from]
	if !ok {
		moves = make(map[Label][]string)
		d.Transitions[from] = moves
	}
	moves[label] = append(moves[label], to...)
	return d
}

// Destinations returns the targets of the (state, label) pair, or nil.
func (d *Definition) Destinations(state string, label Label) []string {
	moves, ok := d.Transitions[state]
	if !ok {
		return nil
	}
	return moves[label]
}

// IsAccepting reports whether state is an accept state.
func (d *Definition) IsAccepting(state string) bool {
	return d.Accept.Has(state)
}

// States returns every state mentioned anywhere in the definition.
func (d *Definition) States() StateSet {
	all := NewStateSet(d.Start)
	for st := range d.Accept {
		all.Add(st)
	}
	for from, moves := range d.Transitions {
		all.Add(from)
		for _, dests := range moves {
			for _, to := range dests {
				all.Add(to)
			}
		}
	}
	return all
}

// TransitionCount returns the number of (from, label, to) triples.
func (d *Definition) TransitionCount() int {
	n := 0
	for _, moves := range d.Transitions {
		for _, dests := range moves {
			n += len(dests)
		}
	}
	return n
}

// Alphabet returns the ordinary symbols used by the definition, sorted.
func (d *Definition) Alphabet() []rune {
	seen := make(map[rune]bool)
	for _, moves := range d.Transitions {
		for label := range moves {
			if r, ok := label.Symbol(); ok {
				seen[r] = true
			}
		}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edge is one flattened transition, used for presentation and export.
type Edge struct {
	From  string
	Label Label
	To    string
}

// Edges returns all transitions in a deterministic order: by source state,
// epsilon moves first, then by symbol, then by destination as declared.
func (d *Definition) Edges() []Edge {
	froms := make([]string, 0, len(d.Transitions))
	for from := range d.Transitions {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	var edges []Edge
	for _, from := range froms {
		moves := d.Transitions[from]
		labels := make([]Label, 0, len(moves))
		for label := range moves {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if labels[i].epsilon != labels[j].epsilon {
				return labels[i].epsilon
			}
			return labels[i].symbol < labels[j].symbol
		})
		for _, label := range labels {
			for _, to := range moves[label] {
				edges = append(edges, Edge{From: from, Label: label, To: to})
			}
		}
	}
	return edges
}
