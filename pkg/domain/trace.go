package domain

// TraceStep records the effect of consuming one symbol.
type TraceStep struct {
	// Symbol is the consumed input symbol.
	Symbol rune `json:"symbol"`
	// Moved is the set reached by ordinary moves, before epsilon closure.
	Moved StateSet `json:"moved"`
	// Closed is Moved after epsilon closure; it is the new current set.
	Closed StateSet `json:"closed"`
}

// Trace is the full record of one simulation run.
type Trace struct {
	Input string `json:"input"`
	// Initial is the epsilon closure of the start state.
	Initial StateSet    `json:"initial"`
	Steps   []TraceStep `json:"steps"`
	// Halted is true when the state set emptied before the input ended.
	// Steps then stops at the symbol that emptied it.
	Halted   bool `json:"halted"`
	Accepted bool `json:"accepted"`
}

// Final returns the state set at the end of the run.
func (t *Trace) Final() StateSet {
	if len(t.Steps) == 0 {
		return t.Initial
	}
	return t.Steps[len(t.Steps)-1].Closed
}
