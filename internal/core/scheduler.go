package core

import (
	"context"
	"log/slog"
	"time"
)

// Recycle bin sweep defaults.
const (
	DefaultRecycleRetention = 30 * 24 * time.Hour
	DefaultSweepInterval    = time.Hour
)

// SweepConfig controls the recycle bin sweeper. A zero Retention disables
// sweeping.
type SweepConfig struct {
	Retention time.Duration // How long soft-deleted items are kept
	Interval  time.Duration // How often to sweep (default: 1h)
}

// StartRecycleSweeper purges items that have sat in the recycle bin longer
// than cfg.Retention. It sweeps once immediately, then every cfg.Interval,
// and returns when ctx is cancelled.
func (s *Service) StartRecycleSweeper(ctx context.Context, cfg SweepConfig) {
	if cfg.Retention <= 0 {
		slog.Info("recycle sweeper disabled")
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweepInterval
	}

	slog.Info("recycle sweeper started", "retention", cfg.Retention, "interval", cfg.Interval)

	s.SweepRecycleBin(ctx, cfg.Retention)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("recycle sweeper stopped")
			return
		case <-ticker.C:
			s.SweepRecycleBin(ctx, cfg.Retention)
		}
	}
}

// SweepRecycleBin runs one purge pass and returns the number of items
// removed. Failures are logged, not returned; the next pass retries.
func (s *Service) SweepRecycleBin(ctx context.Context, retention time.Duration) int64 {
	cutoff := s.now().Add(-retention)

	n, err := s.store.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("recycle sweep failed", "cutoff", cutoff, "error", err)
		}
		return 0
	}
	if n > 0 {
		itemsPurgedTotal.Add(float64(n))
		slog.Info("recycle sweep purged items", "count", n, "cutoff", cutoff)
	}
	return n
}
