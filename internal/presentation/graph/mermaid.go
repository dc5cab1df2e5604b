package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	// Visited holds every state that was active at some point of the run.
	Visited domain.StateSet
	// Active holds the states active when the run ended.
	Active domain.StateSet
}

// OverlayFromTrace builds an overlay from a simulation trace.
func OverlayFromTrace(t *domain.Trace) *GraphOverlay {
	visited := t.Initial.Clone()
	for _, step := range t.Steps {
		for st := range step.Closed {
			visited.Add(st)
		}
	}
	return &GraphOverlay{
		Visited: visited,
		Active:  t.Final().Clone(),
	}
}

// GenerateMermaid produces a Mermaid flowchart for the automaton.
// It applies semantic styling:
// - Start: ((Circle))
// - Accept: (((Double circle)))
// - Other: (Rounded)
// Symbol moves between the same pair of states share one solid arrow;
// epsilon moves are dotted.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	states := def.States().Sorted()
	ids := make(map[string]string, len(states))
	for i, st := range states {
		ids[st] = fmt.Sprintf("n%d", i)
	}

	for _, st := range states {
		opener, closer := "(", ")"
		switch {
		case def.IsAccepting(st):
			opener, closer = "(((", ")))"
		case st == def.Start:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", ids[st], opener, escape(st), closer)
	}

	if _, ok := ids[def.Start]; ok {
		sb.WriteString("    start_marker[ ] --> " + ids[def.Start] + "\n")
		sb.WriteString("    style start_marker fill:none,stroke:none;\n")
	}

	type pair struct{ from, to string }
	var order []pair
	symbols := make(map[pair][]string)
	for _, e := range def.Edges() {
		p := pair{e.From, e.To}
		if e.Label.IsEpsilon() {
			fmt.Fprintf(&sb, "    %s -. \"ε\" .-> %s\n", ids[e.From], ids[e.To])
			continue
		}
		if _, seen := symbols[p]; !seen {
			order = append(order, p)
		}
		r, _ := e.Label.Symbol()
		symbols[p] = append(symbols[p], escape(string(r)))
	}
	for _, p := range order {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", ids[p.from], strings.Join(symbols[p], ", "), ids[p.to])
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for _, st := range states {
			switch {
			case overlay.Active.Has(st):
				fmt.Fprintf(&sb, "    class %s active;\n", ids[st])
			case overlay.Visited.Has(st):
				fmt.Fprintf(&sb, "    class %s visited;\n", ids[st])
			}
		}
	}

	return sb.String()
}

var escaper = strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;")

func escape(s string) string {
	return escaper.Replace(s)
}
