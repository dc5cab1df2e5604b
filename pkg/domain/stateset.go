package domain

import (
	"encoding/json"
	"sort"
)

// StateSet is an unordered set of state identifiers.
// Correctness never depends on iteration order; use Sorted for presentation.
type StateSet map[string]struct{}

// NewStateSet creates a set holding the given states.
func NewStateSet(states ...string) StateSet {
	s := make(StateSet, len(states))
	for _, st := range states {
		s[st] = struct{}{}
	}
	return s
}

// Add inserts a state and reports whether it was absent before.
func (s StateSet) Add(state string) bool {
	if _, ok := s[state]; ok {
		return false
	}
	s[state] = struct{}{}
	return true
}

// Has reports membership.
func (s StateSet) Has(state string) bool {
	_, ok := s[state]
	return ok
}

// Len returns the number of states.
func (s StateSet) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no states.
func (s StateSet) IsEmpty() bool {
	return len(s) == 0
}

// Intersects reports whether the two sets share at least one state.
func (s StateSet) Intersects(other StateSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for st := range small {
		if large.Has(st) {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold exactly the same states.
func (s StateSet) Equal(other StateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for st := range s {
		if !other.Has(st) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s StateSet) Clone() StateSet {
	c := make(StateSet, len(s))
	for st := range s {
		c[st] = struct{}{}
	}
	return c
}

// Sorted returns the states in lexical order.
func (s StateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for st := range s {
		out = append(out, st)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array for stable output.
func (s StateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of state identifiers.
func (s *StateSet) UnmarshalJSON(data []byte) error {
	var states []string
	if err := json.Unmarshal(data, &states); err != nil {
		return err
	}
	*s = NewStateSet(states...)
	return nil
}
