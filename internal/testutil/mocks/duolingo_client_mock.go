package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/duodash/internal/rawdata"
)

// MockDuolingoClient is a mock implementation of duolingo.ClientInterface
type MockDuolingoClient struct {
	mock.Mock
}

func (m *MockDuolingoClient) FetchProfile(ctx context.Context, username string) (rawdata.Record, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rawdata.Record), args.Error(1)
}

func (m *MockDuolingoClient) FetchUser(ctx context.Context, username string) (rawdata.Record, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rawdata.Record), args.Error(1)
}

func (m *MockDuolingoClient) FetchXPSummaries(ctx context.Context, userID string) ([]any, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func (m *MockDuolingoClient) FetchLeaderboardHistory(ctx context.Context, userID string) (rawdata.Record, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rawdata.Record), args.Error(1)
}

func (m *MockDuolingoClient) HasCredentials() bool {
	return m.Called().Bool(0)
}
