package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/cache"
	"github.com/vytor/duodash/internal/duolingo"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/normalize"
	"github.com/vytor/duodash/internal/rawdata"
	"github.com/vytor/duodash/internal/repository"
)

// ProgressService fetches, normalizes and scores learner activity
type ProgressService interface {
	GetProgress(ctx context.Context, username string, force bool) (*models.Dashboard, error)
	NormalizeRaw(ctx context.Context, body []byte) (*models.Dashboard, error)
	Stats(ctx context.Context, body []byte) (*StatsResult, error)
	History(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotSummary, int, error)
	Sync(ctx context.Context, username string) error
}

// StatsResult is the response of a bare series computation.
type StatsResult struct {
	Stats    models.AchievementStats `json:"stats"`
	Badges   []models.Badge          `json:"badges"`
	Unlocked int                     `json:"unlocked"`
}

type progressService struct {
	client       duolingo.ClientInterface
	normalizer   *normalize.Normalizer
	engine       *achievement.Engine
	cache        cache.Store
	snapshotRepo repository.SnapshotRepository
	profileRepo  repository.ProfileRepository
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	client duolingo.ClientInterface,
	normalizer *normalize.Normalizer,
	engine *achievement.Engine,
	store cache.Store,
	snapshotRepo repository.SnapshotRepository,
	profileRepo repository.ProfileRepository,
) ProgressService {
	return &progressService{
		client:       client,
		normalizer:   normalizer,
		engine:       engine,
		cache:        store,
		snapshotRepo: snapshotRepo,
		profileRepo:  profileRepo,
	}
}

func (s *progressService) GetProgress(ctx context.Context, username string, force bool) (*models.Dashboard, error) {
	username = strings.TrimSpace(username)
	log := logger.FromContext(ctx).WithPrefix("progress_service").WithField("username", username)
	log.Debug("getting progress: force=%v", force)

	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}

	key := cache.Key(strings.ToLower(username))
	if !force {
		snap, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache read failed: %v", err)
		} else if ok {
			log.Debug("cache hit")
			return s.dashboard(snap, true), nil
		}
	}

	raw, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		if stderrors.Is(err, duolingo.ErrUserNotFound) {
			return nil, errors.NewNotFoundError("user", username)
		}
		log.Error("upstream fetch failed: %v", err)
		if stale := s.lastKnown(ctx, username); stale != nil {
			log.Warn("serving last stored snapshot from %s", stale.FetchedAt.Format(time.RFC3339))
			d := s.dashboard(*stale, true)
			d.Stale = true
			return d, nil
		}
		return nil, errors.NewUpstreamError("duolingo", err)
	}

	progress, err := s.normalizer.Normalize(duolingo.Sanitize(raw))
	if err != nil {
		log.Error("failed to normalize upstream record: %v", err)
		return nil, errors.NewInvalidInputError(err)
	}
	warnDegraded(log, progress)

	snap := models.Snapshot{
		ID:        uuid.NewString(),
		Username:  username,
		Progress:  progress,
		Stats:     s.engine.Compute(achievement.SeriesFromProgress(progress)),
		FetchedAt: s.normalizer.Now(),
	}

	if err := s.snapshotRepo.Insert(ctx, snap); err != nil {
		log.Warn("failed to persist snapshot: %v", err)
	}
	if err := s.cache.Set(ctx, key, snap); err != nil {
		log.Warn("cache write failed: %v", err)
	}
	s.markSynced(ctx, log, username, snap.FetchedAt)

	log.Info("progress refreshed: streak=%d, total_xp=%d", progress.Streak, progress.TotalXP)
	return s.dashboard(snap, false), nil
}

func (s *progressService) lastKnown(ctx context.Context, username string) *models.Snapshot {
	snap, err := s.snapshotRepo.Latest(ctx, username)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_service").Warn("failed to load last snapshot: %v", err)
		return nil
	}
	return snap
}

func (s *progressService) markSynced(ctx context.Context, log *logger.Logger, username string, at time.Time) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Warn("failed to look up profile: %v", err)
		return
	}
	if profile == nil {
		return
	}
	if err := s.profileRepo.UpdateSync(ctx, profile.ID, at); err != nil {
		log.Warn("failed to update profile sync time: %v", err)
	}
}

func warnDegraded(log *logger.Logger, p models.UserProgress) {
	if p.League.TierIndex < 0 {
		log.Warn("league unavailable")
	}
	if p.TotalXP == 0 {
		log.Warn("totalXp=0")
	}
}

func (s *progressService) dashboard(snap models.Snapshot, cached bool) *models.Dashboard {
	return &models.Dashboard{
		Progress:  snap.Progress,
		Stats:     snap.Stats,
		Badges:    achievement.Badges(snap.Stats),
		Week:      achievement.SummarizeWeek(snap.Progress),
		Cached:    cached,
		FetchedAt: snap.FetchedAt,
	}
}

// NormalizeRaw handles a pasted raw record. Nothing is fetched or stored.
func (s *progressService) NormalizeRaw(ctx context.Context, body []byte) (*models.Dashboard, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service")
	log.Debug("normalizing raw record: %d bytes", len(body))

	progress, err := s.normalizer.NormalizeJSON(body)
	if err != nil {
		if stderrors.Is(err, normalize.ErrInvalidInput) {
			return nil, errors.NewInvalidInputError(err)
		}
		log.Error("failed to normalize raw record: %v", err)
		return nil, errors.NewInternalError(err)
	}
	warnDegraded(log, progress)

	return s.dashboard(models.Snapshot{
		Progress:  progress,
		Stats:     s.engine.Compute(achievement.SeriesFromProgress(progress)),
		FetchedAt: s.normalizer.Now(),
	}, false), nil
}

// Stats accepts either a bare series array or a raw user record.
func (s *progressService) Stats(ctx context.Context, body []byte) (*StatsResult, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service")
	log.Debug("computing stats: %d bytes", len(body))

	v, err := rawdata.Decode(body)
	if err != nil {
		return nil, errors.NewInvalidInputError(err)
	}

	series, ok := achievement.SeriesFromRaw(v)
	if !ok {
		progress, err := s.normalizer.Normalize(v)
		if err != nil {
			return nil, errors.NewInvalidInputError(err)
		}
		series = achievement.SeriesFromProgress(progress)
	}

	stats := s.engine.Compute(series)
	badges := achievement.Badges(stats)
	return &StatsResult{Stats: stats, Badges: badges, Unlocked: achievement.UnlockedCount(badges)}, nil
}

func (s *progressService) History(ctx context.Context, filter models.SnapshotFilter) ([]models.SnapshotSummary, int, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service")
	log.Debug("listing snapshot history: username=%s, limit=%d, offset=%d", filter.Username, filter.Limit, filter.Offset)

	summaries, err := s.snapshotRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list snapshots: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.snapshotRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count snapshots: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return summaries, total, nil
}

// Sync forces a refresh of username. It backs the background sync job.
func (s *progressService) Sync(ctx context.Context, username string) error {
	_, err := s.GetProgress(ctx, username, true)
	return err
}
