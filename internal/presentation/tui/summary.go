package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
)

// Summary renders the automaton overview printed by the inspect command
// and at the top of an interactive run.
func Summary(def *domain.Definition) string {
	var b strings.Builder
	b.WriteString("**AUTOMATON LOADED**")
	if def.Name != "" {
		fmt.Fprintf(&b, ": `%s`", def.Name)
	}
	b.WriteString("\n\n")
	if def.Description != "" {
		b.WriteString(def.Description)
		b.WriteString("\n\n")
	}

	alphabet := make([]string, 0, len(def.Alphabet()))
	for _, r := range def.Alphabet() {
		alphabet = append(alphabet, fmt.Sprintf("`%c`", r))
	}

	fmt.Fprintf(&b, "- Start state: `%s`\n", def.Start)
	fmt.Fprintf(&b, "- Accept states: %s\n", codeList(def.Accept.Sorted()))
	fmt.Fprintf(&b, "- States: %d\n", def.States().Len())
	fmt.Fprintf(&b, "- Transitions: %d\n", def.TransitionCount())
	fmt.Fprintf(&b, "- Alphabet: %s\n", orNone(strings.Join(alphabet, " ")))
	return b.String()
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + it + "`"
	}
	return orNone(strings.Join(quoted, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "_none_"
	}
	return s
}
