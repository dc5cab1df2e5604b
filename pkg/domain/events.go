package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventQueryStart EventType = "query_start"
	EventStep       EventType = "step"
	EventVerdict    EventType = "verdict"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// QueryEvent marks the start of a query.
type QueryEvent struct {
	EventBase
	Input   string   `json:"input"`
	Initial StateSet `json:"initial"`
}

// StepEvent reports the state set after one symbol.
type StepEvent struct {
	EventBase
	Position int      `json:"position"`
	Symbol   rune     `json:"symbol"`
	States   StateSet `json:"states"`
}

// VerdictEvent reports the outcome of a query.
type VerdictEvent struct {
	EventBase
	Input    string        `json:"input"`
	Accepted bool          `json:"accepted"`
	Halted   bool          `json:"halted"`
	Consumed int           `json:"consumed"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks observe a query; they never influence its verdict.
type LifecycleHooks struct {
	OnQueryStart func(context.Context, *QueryEvent)
	OnStep       func(context.Context, *StepEvent)
	OnVerdict    func(context.Context, *VerdictEvent)
}
