package dto

// Automaton is the generic shape of a definition document.
// It uses "mapstructure" tags to match the JSON/YAML keys.
type Automaton struct {
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Start       string   `json:"start_state" mapstructure:"start_state"`
	Accept      []string `json:"accept_states" mapstructure:"accept_states"`

	// Transitions maps state -> label key -> destinations.
	// The label key "" is an epsilon move.
	Transitions map[string]map[string][]string `json:"transitions" mapstructure:"transitions"`
}

// HCLAutomaton is the HCL flavour of the same document.
// A transition block without an `on` attribute is an epsilon move.
type HCLAutomaton struct {
	Name        *string         `hcl:"name,optional"`
	Description *string         `hcl:"description,optional"`
	Start       string          `hcl:"start_state"`
	Accept      []string        `hcl:"accept_states,optional"`
	Transitions []HCLTransition `hcl:"transition,block"`
}

type HCLTransition struct {
	From string   `hcl:"from,label"`
	On   *string  `hcl:"on,optional"`
	To   []string `hcl:"to"`
}

// Flatten converts the HCL document into the generic shape.
func (h *HCLAutomaton) Flatten() *Automaton {
	doc := &Automaton{
		Start:       h.Start,
		Accept:      h.Accept,
		Transitions: make(map[string]map[string][]string),
	}
	if h.Name != nil {
		doc.Name = *h.Name
	}
	if h.Description != nil {
		doc.Description = *h.Description
	}
	for _, t := range h.Transitions {
		key := ""
		if t.On != nil {
			key = *t.On
		}
		moves, ok := doc.Transitions[t.From]
		if !ok {
			moves = make(map[string][]string)
			doc.Transitions[t.From] = moves
		}
		moves[key] = append(moves[key], t.To...)
	}
	return doc
}
