package jobs

import (
	"context"
	"time"

	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
)

// ProfileLister is the part of the profile repository the scheduler needs.
type ProfileLister interface {
	List(ctx context.Context) ([]models.Profile, error)
}

// Scheduler periodically enqueues a sync for every tracked profile and, when
// Retention is set, prunes older snapshots.
type Scheduler struct {
	Queue     JobQueue
	Profiles  ProfileLister
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time
}

// Run ticks until ctx is cancelled. A non-positive Interval disables it.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	if s.Interval <= 0 {
		log.Debug("periodic sync disabled")
		return
	}
	log.Info("periodic sync every %v", s.Interval)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick enqueues one round of work and reports how many syncs were queued.
func (s *Scheduler) Tick(ctx context.Context) int {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	profiles, err := s.Profiles.List(ctx)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return 0
	}

	queued := 0
	for _, p := range profiles {
		if err := s.Queue.EnqueueSync(p.Username); err != nil {
			log.Warn("failed to enqueue sync for %s: %v", p.Username, err)
			continue
		}
		queued++
	}

	if s.Retention > 0 {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		if err := s.Queue.EnqueuePrune(now().Add(-s.Retention)); err != nil {
			log.Warn("failed to enqueue snapshot pruning: %v", err)
		}
	}

	log.Debug("queued %d of %d profile syncs", queued, len(profiles))
	return queued
}
