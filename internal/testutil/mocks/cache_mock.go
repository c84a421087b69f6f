package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/duodash/internal/models"
)

// MockCache is a mock implementation of cache.Store
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (models.Snapshot, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(models.Snapshot), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, snap models.Snapshot) error {
	args := m.Called(ctx, key, snap)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
