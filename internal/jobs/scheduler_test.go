package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vytor/duodash/internal/jobs"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/testutil/mocks"
)

func TestSchedulerTick(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC)

	profileRepo := new(mocks.MockProfileRepository)
	profileRepo.On("List", mock.Anything).Return([]models.Profile{
		{ID: 1, Username: "owl"},
		{ID: 2, Username: "fox"},
	}, nil)

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueSync", "owl").Return(nil)
	queue.On("EnqueueSync", "fox").Return(errors.New("worker queue full"))
	queue.On("EnqueuePrune", now.Add(-30*24*time.Hour)).Return(nil)

	s := &jobs.Scheduler{
		Queue:     queue,
		Profiles:  profileRepo,
		Retention: 30 * 24 * time.Hour,
		Now:       func() time.Time { return now },
	}

	assert.Equal(t, 1, s.Tick(ctx))
	queue.AssertExpectations(t)
}

func TestSchedulerTick_ListFails(t *testing.T) {
	profileRepo := new(mocks.MockProfileRepository)
	profileRepo.On("List", mock.Anything).Return(nil, errors.New("db down"))
	queue := new(mocks.MockJobQueue)

	s := &jobs.Scheduler{Queue: queue, Profiles: profileRepo}
	assert.Zero(t, s.Tick(context.Background()))
	queue.AssertNotCalled(t, "EnqueueSync", mock.Anything)
	queue.AssertNotCalled(t, "EnqueuePrune", mock.Anything)
}

func TestSchedulerRun_DisabledReturnsImmediately(t *testing.T) {
	s := &jobs.Scheduler{}
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler did not return")
	}
}
