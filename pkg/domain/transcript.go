package domain

import "time"

// Query is one membership question and its verdict.
type Query struct {
	Input    string    `json:"input"`
	Accepted bool      `json:"accepted"`
	At       time.Time `json:"at"`
}

// Transcript is the history of queries issued within a named session.
type Transcript struct {
	SessionID string    `json:"session_id"`
	Automaton string    `json:"automaton,omitempty"`
	Queries   []Query   `json:"queries"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted transcript when the store is wrapped by
	// an encrypting middleware. Queries is empty in that envelope.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewTranscript creates an empty transcript for a session.
func NewTranscript(sessionID, automaton string) *Transcript {
	now := time.Now().UTC()
	return &Transcript{
		SessionID: sessionID,
		Automaton: automaton,
		Queries:   []Query{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record appends a query and bumps UpdatedAt.
func (t *Transcript) Record(q Query) {
	if q.At.IsZero() {
		q.At = time.Now().UTC()
	}
	t.Queries = append(t.Queries, q)
	t.UpdatedAt = q.At
}

// Accepted counts accepted queries.
func (t *Transcript) Accepted() int {
	n := 0
	for _, q := range t.Queries {
		if q.Accepted {
			n++
		}
	}
	return n
}
