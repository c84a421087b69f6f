package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/duodash/internal/coach"
	"github.com/vytor/duodash/internal/models"
)

// MockAnalyzer is a mock implementation of services.Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, summary models.CoachSummary) (coach.Result, error) {
	args := m.Called(ctx, summary)
	return args.Get(0).(coach.Result), args.Error(1)
}
