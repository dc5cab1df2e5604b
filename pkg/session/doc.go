/*
Package session serializes updates to query transcripts.

A transcript is appended from several goroutines (HTTP handlers, MCP tools)
and possibly several replicas sharing one store. The Manager holds a
reference-counted mutex per session and, when configured, a distributed lock
around each read-modify-write.
*/
package session
