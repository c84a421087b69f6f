package jobs

import (
	"time"

	"github.com/vytor/duodash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool   *worker.Pool
	syncer worker.ProgressSyncer
	pruner worker.SnapshotPruner
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, syncer worker.ProgressSyncer, pruner worker.SnapshotPruner) *WorkerQueue {
	return &WorkerQueue{pool: pool, syncer: syncer, pruner: pruner}
}

func (q *WorkerQueue) EnqueueSync(username string) error {
	return q.pool.Submit(&worker.SyncProgressJob{
		Syncer:   q.syncer,
		Username: username,
	})
}

func (q *WorkerQueue) EnqueuePrune(cutoff time.Time) error {
	return q.pool.Submit(&worker.PruneSnapshotsJob{
		Pruner: q.pruner,
		Cutoff: cutoff,
	})
}
