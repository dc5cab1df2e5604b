/*
Package thicket simulates nondeterministic finite automata (NFA) defined at
runtime.

An automaton is data: a start state, a set of accept states and a transition
relation that may carry several destinations per (state, symbol) pair and
epsilon moves that consume nothing. Thicket loads such a definition from a
JSON, YAML or HCL document and answers membership queries: does this input
string belong to the language the automaton accepts?

# Concept

The engine keeps the set of every state the automaton could be in. Each input
symbol moves the whole set at once, and the epsilon closure of the result
becomes the new set. The input is accepted when the final set contains an
accept state. When the set becomes empty the query is rejected immediately.

Epsilon is its own label, never a reserved character: in documents it is the
empty key "", so every printable symbol, '*' included, can be consumed.

# Usage

	eng, err := thicket.New("./automata/ends-in-ab.json")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(eng.Accepts(ctx, "aab")) // true

Definitions can also be built in code and injected with WithDefinition, or
loaded from a custom ports.DefinitionLoader with WithLoader.
*/
package thicket
