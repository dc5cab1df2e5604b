/*
Package domain contains the core data model of the Thicket simulator.

It describes a nondeterministic finite automaton as plain, immutable data and
the ephemeral values produced while simulating it. This package is kept pure
and free of I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Definition: start state, accept states and the transition relation.
  - Label: a transition label, either Consume(symbol) or Epsilon.
  - StateSet: the set of states the simulation considers currently possible.
  - Trace: a step-by-step record of one simulation run.
  - Transcript: the queries issued within a named session.
*/
package domain
