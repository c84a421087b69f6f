package services

import (
	"context"
	"strings"

	"github.com/vytor/duodash/internal/cache"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/jobs"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/repository"
)

// ProfileService handles tracked profile business logic
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
	SyncProfile(ctx context.Context, id int64) (*models.Profile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	queue       jobs.JobQueue
	cache       cache.Store
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository, queue jobs.JobQueue, store cache.Store) ProfileService {
	return &profileService{profileRepo: profileRepo, queue: queue, cache: store}
}

func (s *profileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("listing profiles")

	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return profiles, nil
}

// CreateProfile tracks a username and queues its first sync.
func (s *profileService) CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	req.Username = strings.TrimSpace(req.Username)
	log.Debug("creating profile: username=%s", req.Username)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Upsert(ctx, req.Username)
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.queue.EnqueueSync(profile.Username); err != nil {
		log.Warn("failed to enqueue initial sync: %v", err)
	}

	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("getting profile: id=%d", id)

	profile, err := s.profileRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if profile == nil {
		return nil, errors.NewNotFoundError("profile", id)
	}

	return profile, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("deleting profile: id=%d", id)

	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete profile: %v", err)
		return errors.NewInternalError(err)
	}

	if err := s.cache.Delete(ctx, cache.Key(strings.ToLower(profile.Username))); err != nil {
		log.Warn("failed to evict cached snapshot: %v", err)
	}

	return nil
}

func (s *profileService) SyncProfile(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("queueing sync: id=%d", id)

	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueSync(profile.Username); err != nil {
		log.Error("failed to enqueue sync: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return profile, nil
}
