package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/houseoftheai/server/internal/repo"
)

// PendingSweeper periodically deletes pending signups whose code expired more
// than a grace margin ago. Expiry itself is still enforced lazily at verify
// time; the sweeper only bounds storage growth from abandoned signups.
type PendingSweeper struct {
	pending  repo.PendingRepo
	grace    time.Duration
	interval time.Duration
	log      *slog.Logger
}

// NewPendingSweeper creates a new sweeper
func NewPendingSweeper(pending repo.PendingRepo, grace, interval time.Duration, log *slog.Logger) *PendingSweeper {
	return &PendingSweeper{
		pending:  pending,
		grace:    grace,
		interval: interval,
		log:      log,
	}
}

// Run sweeps on a ticker until the context is cancelled
func (s *PendingSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.grace)
	deleted, err := s.pending.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.log.Warn("pending signup sweep failed", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		s.log.Info("swept expired pending signups", slog.Int64("deleted", deleted))
	}
}
