package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/duodash/internal/coach"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
)

// Analyzer produces the AI coach comment.
type Analyzer interface {
	Analyze(ctx context.Context, summary models.CoachSummary) (coach.Result, error)
}

// CoachService validates coach requests and maps provider failures
type CoachService interface {
	Analyze(ctx context.Context, summary models.CoachSummary) (*coach.Result, error)
}

type coachService struct {
	analyzer Analyzer
}

// NewCoachService creates a new CoachService
func NewCoachService(analyzer Analyzer) CoachService {
	return &coachService{analyzer: analyzer}
}

func (s *coachService) Analyze(ctx context.Context, summary models.CoachSummary) (*coach.Result, error) {
	log := logger.FromContext(ctx).WithPrefix("coach_service")
	log.Debug("requesting coach comment: streak=%d, courses=%d", summary.Streak, summary.CourseCount)

	if err := validateStruct(summary); err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, summary)
	if err != nil {
		if stderrors.Is(err, coach.ErrNoEndpoint) {
			return nil, errors.NewNotConfiguredError("AI endpoint")
		}
		log.Error("coach request failed: %v", err)
		return nil, errors.NewUpstreamError("AI provider", err)
	}

	return &res, nil
}
