package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/gorhill/cronexpr"
)

// Prune deletes every transcript whose last update is before cutoff and
// returns the removed session IDs.
func (m *Manager) Prune(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := m.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var removed []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			transcript, err := m.store.Load(ctx, id)
			if err != nil {
				return err
			}
			if !transcript.UpdatedAt.Before(cutoff) {
				return nil
			}
			if err := m.store.Delete(ctx, id); err != nil {
				return err
			}
			removed = append(removed, id)
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return removed, fmt.Errorf("failed to prune session %s: %w", id, err)
		}
	}
	return removed, nil
}

// Sweeper prunes idle transcripts on a cron schedule.
type Sweeper struct {
	manager *Manager
	expr    *cronexpr.Expression
	maxAge  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSweeper parses schedule, a standard cron expression such as
// "0 3 * * *" or "@hourly", and removes transcripts idle for longer than
// maxAge at every tick.
func NewSweeper(manager *Manager, schedule string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive, got %s", maxAge)
	}
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		manager: manager,
		expr:    expr,
		maxAge:  maxAge,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Next returns the first tick after t. A zero time means the schedule
// never fires again.
func (s *Sweeper) Next(t time.Time) time.Time {
	return s.expr.Next(t)
}

// Sweep runs a single prune pass.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	removed, err := s.manager.Prune(ctx, s.now().Add(-s.maxAge))
	if len(removed) > 0 {
		s.logger.Info("Pruned idle sessions", "count", len(removed), "max_age", s.maxAge)
	}
	return removed, err
}

// Run sweeps at every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		next := s.Next(s.now())
		if next.IsZero() {
			s.logger.Warn("Prune schedule has no upcoming run")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Session prune failed", "err", err)
		}
	}
}
