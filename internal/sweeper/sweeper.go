// Package sweeper runs the periodic inactivity decay over all user records.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DuneReaper/dune-reapers-bot/internal/domain"
	"github.com/DuneReaper/dune-reapers-bot/internal/store"
)

// Sweeper periodically scans the store and applies the inactivity penalty
// to members past the grace window and not on break.
type Sweeper struct {
	repo     store.Repo
	log      *zap.Logger
	interval time.Duration
}

// New creates a Sweeper. The production interval is 24h.
func New(repo store.Repo, log *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, log: log, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopping")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	decayed, err := s.Sweep(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("decay sweep failed", zap.Error(err))
		return
	}
	if decayed > 0 {
		s.log.Info("decay sweep applied", zap.Int("records", decayed))
	}
}

// Sweep performs one decay pass at the given time and returns how many
// records were penalized. Members on break, members never active and
// members within the two-day grace window are skipped. All updates commit
// in a single batch; a failed pass leaves every record untouched and the
// next scheduled pass re-evaluates with a larger days-inactive count.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var updates []store.DecayUpdate
	for _, u := range users {
		if u.OnBreak || u.LastActive == nil {
			continue
		}
		days := domain.DaysInactive(now, *u.LastActive)
		if days <= domain.DecayGraceDays {
			continue
		}
		loss := domain.DecayLoss(days)
		updates = append(updates, store.DecayUpdate{
			MemberID: u.MemberID,
			NewScore: domain.ApplyDecayLoss(u.Score, loss),
		})
	}

	if len(updates) == 0 {
		return 0, nil
	}
	// Penalized records get last_active advanced to the sweep time, so the
	// same gap is not re-penalized by the next pass.
	if err := s.repo.ApplyDecay(ctx, updates, now); err != nil {
		return 0, err
	}
	return len(updates), nil
}
