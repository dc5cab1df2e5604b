/*
Package ports defines the driven ports (interfaces) for the Thicket simulator.

These interfaces decouple the core from external implementations, allowing the
engine to work with various definition sources, transcript backends and lock
managers.

# Key Interfaces

  - DefinitionLoader: produces an automaton definition (e.g., from a file or memory).
  - TranscriptStore: persists the queries issued within a session.
  - DistributedLocker: serializes session updates across instances.
  - Simulator: the query surface consumed by the HTTP, MCP and CLI adapters.
*/
package ports
