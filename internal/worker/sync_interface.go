package worker

import (
	"context"
	"time"
)

// ProgressSyncer refreshes one user's stored progress.
// This avoids import cycles by not importing the services package
type ProgressSyncer interface {
	Sync(ctx context.Context, username string) error
}

// SnapshotPruner removes persisted snapshots older than a cutoff.
type SnapshotPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
