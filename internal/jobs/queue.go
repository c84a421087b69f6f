package jobs

import "time"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueSync(username string) error
	EnqueuePrune(cutoff time.Time) error
}
