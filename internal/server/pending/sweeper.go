package pending

import (
	"context"
	"time"

	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
)

// Sweepable is a store whose expired entries must be removed explicitly.
type Sweepable interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper periodically evicts expired entries from a Sweepable store.
type Sweeper struct {
	store    Sweepable
	interval time.Duration
	log      logging.Logger
}

func NewSweeper(store Sweepable, interval time.Duration, log logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Sweeper{store: store, interval: interval, log: log.With("module", "pending_sweeper")}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and logs the outcome.
func (s *Sweeper) RunOnce(ctx context.Context) {
	n, err := s.store.Sweep(ctx)
	if err != nil {
		s.log.Error(ctx, "pending sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Debug(ctx, "expired pending signups removed", "count", n)
	}
}
