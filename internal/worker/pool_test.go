package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/duodash/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

type syncerFunc func(ctx context.Context, username string) error

func (f syncerFunc) Sync(ctx context.Context, username string) error { return f(ctx, username) }

type prunerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

func (f prunerFunc) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 8)
	pool.Start(context.Background())

	var ran atomic.Int32
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return nil
		}}))
	}
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	pool.Stop()
	assert.Equal(t, int32(4), ran.Load())
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, pool.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("kaboom") }}))

	done := make(chan struct{})
	require.NoError(t, pool.Submit(funcJob{name: "after", fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after failing job")
	}
}

func TestPool_SubmitWhenFullOrStopped(t *testing.T) {
	pool := worker.NewPool(1, 1)
	// Not started: the single slot fills and stays full.
	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	require.NoError(t, pool.Submit(noop))
	assert.ErrorIs(t, pool.Submit(noop), worker.ErrQueueFull)
	assert.Equal(t, 1, pool.QueueSize())

	pool.Stop()
	assert.ErrorIs(t, pool.Submit(noop), worker.ErrPoolStopped)
	pool.Stop()
}

func TestSyncProgressJob(t *testing.T) {
	var got string
	job := &worker.SyncProgressJob{
		Username: "owl",
		Syncer: syncerFunc(func(_ context.Context, username string) error {
			got = username
			return nil
		}),
	}
	assert.Equal(t, "sync_progress", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "owl", got)
}

func TestPruneSnapshotsJob(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	job := &worker.PruneSnapshotsJob{
		Cutoff: cutoff,
		Pruner: prunerFunc(func(_ context.Context, c time.Time) (int64, error) {
			assert.True(t, cutoff.Equal(c))
			return 3, nil
		}),
	}
	require.NoError(t, job.Run(context.Background()))

	failing := &worker.PruneSnapshotsJob{Pruner: prunerFunc(func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("locked")
	})}
	assert.Error(t, failing.Run(context.Background()))
}
