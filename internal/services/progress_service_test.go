package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/cache"
	"github.com/vytor/duodash/internal/duolingo"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/normalize"
	"github.com/vytor/duodash/internal/rawdata"
	"github.com/vytor/duodash/internal/services"
	"github.com/vytor/duodash/internal/testutil"
	"github.com/vytor/duodash/internal/testutil/mocks"
)

// 2024-03-06 12:00 in Asia/Shanghai.
var fixedNow = time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC)

type ProgressServiceSuite struct {
	suite.Suite
	client    *mocks.MockDuolingoClient
	cache     *mocks.MockCache
	snapshots *mocks.MockSnapshotRepository
	profiles  *mocks.MockProfileRepository
	svc       services.ProgressService
}

func (s *ProgressServiceSuite) SetupTest() {
	loc, err := normalize.LoadLocation(normalize.DefaultTimeZone)
	s.Require().NoError(err)
	clock := func() time.Time { return fixedNow }

	s.client = new(mocks.MockDuolingoClient)
	s.cache = new(mocks.MockCache)
	s.snapshots = new(mocks.MockSnapshotRepository)
	s.profiles = new(mocks.MockProfileRepository)
	s.svc = services.NewProgressService(
		s.client,
		normalize.New(normalize.WithLocation(loc), normalize.WithClock(clock)),
		achievement.NewEngine(achievement.WithLocation(loc), achievement.WithClock(clock)),
		s.cache,
		s.snapshots,
		s.profiles,
	)
}

func rawOwl() rawdata.Record {
	return rawdata.Record{
		"username":    "Owl",
		"email":       "owl@example.com",
		"site_streak": float64(3),
		"total_xp":    float64(4200),
		"tier":        float64(4),
		"calendar": []any{
			map[string]any{"datetime": float64(1709510400000), "improvement": float64(20)}, // 03-04 08:00 +08
			map[string]any{"datetime": float64(1709596800000), "improvement": float64(15)}, // 03-05
			map[string]any{"datetime": float64(1709690400000), "improvement": float64(10)}, // 03-06 10:00
		},
	}
}

func appErrCode(err error) string {
	appErr, ok := errors.As(err)
	if !ok {
		return ""
	}
	return appErr.Code
}

func (s *ProgressServiceSuite) TestGetProgress_CacheHit() {
	ctx := context.Background()
	cached := testutil.Snapshot("id-1", "Owl", 9, 900, fixedNow.Add(-time.Minute))
	s.cache.On("Get", mock.Anything, cache.Key("owl")).Return(cached, true, nil)

	d, err := s.svc.GetProgress(ctx, "Owl", false)
	s.Require().NoError(err)
	s.Assert().True(d.Cached)
	s.Assert().Equal(9, d.Progress.Streak)
	s.Assert().Len(d.Badges, 17)
	s.client.AssertNotCalled(s.T(), "FetchProfile", mock.Anything, mock.Anything)
}

func (s *ProgressServiceSuite) TestGetProgress_FetchesAndPersists() {
	ctx := context.Background()
	s.cache.On("Get", mock.Anything, cache.Key("owl")).Return(models.Snapshot{}, false, nil)
	s.client.On("FetchProfile", mock.Anything, "Owl").Return(rawOwl(), nil)
	s.snapshots.On("Insert", mock.Anything, mock.MatchedBy(func(snap models.Snapshot) bool {
		return snap.ID != "" && snap.Username == "Owl" && snap.Progress.TotalXP == 4200 && snap.FetchedAt.Equal(fixedNow)
	})).Return(nil)
	s.cache.On("Set", mock.Anything, cache.Key("owl"), mock.AnythingOfType("models.Snapshot")).Return(nil)
	s.profiles.On("GetByUsername", mock.Anything, "Owl").Return(&models.Profile{ID: 7, Username: "Owl"}, nil)
	s.profiles.On("UpdateSync", mock.Anything, int64(7), fixedNow).Return(nil)

	d, err := s.svc.GetProgress(ctx, "Owl", false)
	s.Require().NoError(err)

	s.Assert().False(d.Cached)
	s.Assert().Equal(3, d.Progress.Streak)
	s.Assert().Equal("Ruby", d.Progress.League.Name)
	s.Assert().Equal(3, d.Stats.CurrentStreak)
	s.Assert().Equal(3, d.Stats.TotalDays)
	s.Assert().Equal(45, d.Stats.TotalXP)
	s.Assert().Equal(3, d.Week.DaysLearned)
	s.snapshots.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
	s.profiles.AssertExpectations(s.T())
}

func (s *ProgressServiceSuite) TestGetProgress_ForceSkipsCacheAndUntrackedUser() {
	ctx := context.Background()
	s.client.On("FetchProfile", mock.Anything, "Owl").Return(rawOwl(), nil)
	s.snapshots.On("Insert", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
	s.cache.On("Set", mock.Anything, cache.Key("owl"), mock.Anything).Return(nil)
	s.profiles.On("GetByUsername", mock.Anything, "Owl").Return(nil, nil)

	d, err := s.svc.GetProgress(ctx, "Owl", true)
	s.Require().NoError(err)
	s.Assert().False(d.Cached)
	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
	s.profiles.AssertNotCalled(s.T(), "UpdateSync", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ProgressServiceSuite) TestGetProgress_UserNotFound() {
	s.cache.On("Get", mock.Anything, mock.Anything).Return(models.Snapshot{}, false, nil)
	s.client.On("FetchProfile", mock.Anything, "ghost").Return(nil, duolingo.ErrUserNotFound)

	_, err := s.svc.GetProgress(context.Background(), "ghost", false)
	s.Assert().Equal(errors.ErrCodeNotFound, appErrCode(err))
}

func (s *ProgressServiceSuite) TestGetProgress_UpstreamFailureServesStale() {
	stale := testutil.Snapshot("old", "Owl", 2, 100, fixedNow.Add(-48*time.Hour))
	s.cache.On("Get", mock.Anything, mock.Anything).Return(models.Snapshot{}, false, nil)
	s.client.On("FetchProfile", mock.Anything, "Owl").Return(nil, stderrors.New("timeout"))
	s.snapshots.On("Latest", mock.Anything, "Owl").Return(&stale, nil)

	d, err := s.svc.GetProgress(context.Background(), "Owl", false)
	s.Require().NoError(err)
	s.Assert().True(d.Stale)
	s.Assert().True(d.Cached)
	s.Assert().Equal(2, d.Progress.Streak)
}

func (s *ProgressServiceSuite) TestGetProgress_UpstreamFailureWithoutHistory() {
	s.cache.On("Get", mock.Anything, mock.Anything).Return(models.Snapshot{}, false, stderrors.New("redis down"))
	s.client.On("FetchProfile", mock.Anything, "Owl").Return(nil, stderrors.New("timeout"))
	s.snapshots.On("Latest", mock.Anything, "Owl").Return(nil, nil)

	_, err := s.svc.GetProgress(context.Background(), "Owl", false)
	s.Assert().Equal(errors.ErrCodeUpstream, appErrCode(err))
}

func (s *ProgressServiceSuite) TestGetProgress_EmptyUsername() {
	_, err := s.svc.GetProgress(context.Background(), "  ", false)
	s.Assert().Equal(errors.ErrCodeValidation, appErrCode(err))
}

func (s *ProgressServiceSuite) TestNormalizeRaw() {
	d, err := s.svc.NormalizeRaw(context.Background(), []byte(`{"streak": 4, "totalXp": 77}`))
	s.Require().NoError(err)
	s.Assert().Equal(4, d.Progress.Streak)
	s.Assert().Equal(77, d.Progress.TotalXP)
	s.Assert().True(d.FetchedAt.Equal(fixedNow))

	for _, body := range []string{`[1,2]`, `"text"`, `{broken`} {
		_, err := s.svc.NormalizeRaw(context.Background(), []byte(body))
		s.Assert().Equal(errors.ErrCodeInvalidInput, appErrCode(err), body)
	}
}

func (s *ProgressServiceSuite) TestStats_Series() {
	res, err := s.svc.Stats(context.Background(), []byte(`[
		{"date": "2024-03-04", "xp": 60},
		{"date": "2024-03-05", "xp": 40},
		{"date": "2024-03-06", "xp": 10},
		{"date": "garbage", "xp": 500}
	]`))
	s.Require().NoError(err)
	s.Assert().Equal(3, res.Stats.CurrentStreak)
	s.Assert().Equal(110, res.Stats.TotalXP)
	s.Assert().Equal(60, res.Stats.MaxDailyXP)
	s.Assert().Len(res.Badges, 17)
	s.Assert().Equal(achievement.UnlockedCount(res.Badges), res.Unlocked)
}

func (s *ProgressServiceSuite) TestStats_RawRecord() {
	res, err := s.svc.Stats(context.Background(), []byte(`{"calendar": [{"datetime": 1709690400000, "improvement": 12}]}`))
	s.Require().NoError(err)
	s.Assert().Equal(1, res.Stats.CurrentStreak)
	s.Assert().Equal(12, res.Stats.TotalXP)

	_, err = s.svc.Stats(context.Background(), []byte(`42`))
	s.Assert().Equal(errors.ErrCodeInvalidInput, appErrCode(err))
}

func (s *ProgressServiceSuite) TestHistory() {
	filter := models.SnapshotFilter{Username: "Owl", Limit: 2}
	summaries := []models.SnapshotSummary{{ID: "a"}, {ID: "b"}}
	s.snapshots.On("List", mock.Anything, filter).Return(summaries, nil)
	s.snapshots.On("Count", mock.Anything, filter).Return(5, nil)

	got, total, err := s.svc.History(context.Background(), filter)
	s.Require().NoError(err)
	s.Assert().Equal(summaries, got)
	s.Assert().Equal(5, total)
}

func (s *ProgressServiceSuite) TestHistory_RepositoryError() {
	s.snapshots.On("List", mock.Anything, mock.Anything).Return(nil, stderrors.New("locked"))

	_, _, err := s.svc.History(context.Background(), models.SnapshotFilter{})
	s.Assert().Equal(errors.ErrCodeInternal, appErrCode(err))
}

func (s *ProgressServiceSuite) TestSync_ForcesRefresh() {
	s.client.On("FetchProfile", mock.Anything, "Owl").Return(nil, duolingo.ErrUserNotFound)

	err := s.svc.Sync(context.Background(), "Owl")
	s.Assert().Equal(errors.ErrCodeNotFound, appErrCode(err))
	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func TestProgressServiceSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceSuite))
}
