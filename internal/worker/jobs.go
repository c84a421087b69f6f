package worker

import (
	"context"
	"time"

	"github.com/vytor/duodash/internal/logger"
)

// SyncProgressJob fetches, normalizes and stores a fresh snapshot for one user.
type SyncProgressJob struct {
	Syncer   ProgressSyncer
	Username string
}

func (j *SyncProgressJob) Name() string { return "sync_progress" }

func (j *SyncProgressJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("username", j.Username)
	log.Info("starting background sync")
	return j.Syncer.Sync(logger.NewContext(ctx, log), j.Username)
}

// PruneSnapshotsJob deletes snapshots fetched before Cutoff.
type PruneSnapshotsJob struct {
	Pruner SnapshotPruner
	Cutoff time.Time
}

func (j *PruneSnapshotsJob) Name() string { return "prune_snapshots" }

func (j *PruneSnapshotsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	n, err := j.Pruner.DeleteBefore(ctx, j.Cutoff)
	if err != nil {
		return err
	}
	log.Info("pruned %d snapshots older than %s", n, j.Cutoff.Format(time.RFC3339))
	return nil
}
