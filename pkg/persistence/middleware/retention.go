package middleware

import (
	"context"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

type retentionMiddleware struct {
	ports.TranscriptStore
	maxQueries int
}

// NewRetentionMiddleware keeps only the most recent maxQueries queries of
// each transcript. A non-positive limit disables trimming.
func NewRetentionMiddleware(maxQueries int) Middleware {
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		if maxQueries <= 0 {
			return next
		}
		return &retentionMiddleware{TranscriptStore: next, maxQueries: maxQueries}
	}
}

func (m *retentionMiddleware) Save(ctx context.Context, sessionID string, transcript *domain.Transcript) error {
	if len(transcript.Queries) <= m.maxQueries {
		return m.TranscriptStore.Save(ctx, sessionID, transcript)
	}

	trimmed := *transcript
	trimmed.Queries = append([]domain.Query(nil), transcript.Queries[len(transcript.Queries)-m.maxQueries:]...)
	return m.TranscriptStore.Save(ctx, sessionID, &trimmed)
}
