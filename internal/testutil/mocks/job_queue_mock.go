package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueSync(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueuePrune(cutoff time.Time) error {
	args := m.Called(cutoff)
	return args.Error(0)
}
