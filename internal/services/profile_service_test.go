package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/duodash/internal/cache"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/services"
	"github.com/vytor/duodash/internal/testutil/mocks"
)

func newProfileService() (services.ProfileService, *mocks.MockProfileRepository, *mocks.MockJobQueue, *mocks.MockCache) {
	repo := new(mocks.MockProfileRepository)
	queue := new(mocks.MockJobQueue)
	store := new(mocks.MockCache)
	return services.NewProfileService(repo, queue, store), repo, queue, store
}

func TestCreateProfile(t *testing.T) {
	svc, repo, queue, _ := newProfileService()
	repo.On("Upsert", mock.Anything, "owl").Return(&models.Profile{ID: 1, Username: "owl"}, nil)
	queue.On("EnqueueSync", "owl").Return(nil)

	p, err := svc.CreateProfile(context.Background(), models.CreateProfileRequest{Username: "  owl "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	queue.AssertExpectations(t)
}

func TestCreateProfile_QueueFullStillCreates(t *testing.T) {
	svc, repo, queue, _ := newProfileService()
	repo.On("Upsert", mock.Anything, "owl").Return(&models.Profile{ID: 1, Username: "owl"}, nil)
	queue.On("EnqueueSync", "owl").Return(stderrors.New("worker queue full"))

	p, err := svc.CreateProfile(context.Background(), models.CreateProfileRequest{Username: "owl"})
	require.NoError(t, err)
	assert.Equal(t, "owl", p.Username)
}

func TestCreateProfile_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{name: "empty", username: ""},
		{name: "blank", username: "   "},
		{name: "path characters", username: "owl/../admin"},
		{name: "too long", username: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newProfileService()
			_, err := svc.CreateProfile(context.Background(), models.CreateProfileRequest{Username: tt.username})
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
			assert.Contains(t, appErr.Message, "username")
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, repo, _, _ := newProfileService()
	repo.On("Get", mock.Anything, int64(9)).Return(nil, nil)

	_, err := svc.GetProfile(context.Background(), 9)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Status)
}

func TestGetProfile_RepositoryError(t *testing.T) {
	svc, repo, _, _ := newProfileService()
	repo.On("Get", mock.Anything, int64(9)).Return(nil, stderrors.New("db closed"))

	_, err := svc.GetProfile(context.Background(), 9)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
}

func TestDeleteProfile_EvictsCache(t *testing.T) {
	svc, repo, _, store := newProfileService()
	repo.On("Get", mock.Anything, int64(3)).Return(&models.Profile{ID: 3, Username: "Owl"}, nil)
	repo.On("Delete", mock.Anything, int64(3)).Return(nil)
	store.On("Delete", mock.Anything, cache.Key("owl")).Return(nil)

	require.NoError(t, svc.DeleteProfile(context.Background(), 3))
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestDeleteProfile_Missing(t *testing.T) {
	svc, repo, _, _ := newProfileService()
	repo.On("Get", mock.Anything, int64(3)).Return(nil, nil)

	err := svc.DeleteProfile(context.Background(), 3)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSyncProfile(t *testing.T) {
	svc, repo, queue, _ := newProfileService()
	repo.On("Get", mock.Anything, int64(2)).Return(&models.Profile{ID: 2, Username: "fox"}, nil)
	queue.On("EnqueueSync", "fox").Return(nil).Once()

	p, err := svc.SyncProfile(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "fox", p.Username)

	queue.On("EnqueueSync", "fox").Return(stderrors.New("worker pool stopped"))
	_, err = svc.SyncProfile(context.Background(), 2)
	assert.Error(t, err)
}

func TestListProfiles(t *testing.T) {
	svc, repo, _, _ := newProfileService()
	repo.On("List", mock.Anything).Return([]models.Profile{{ID: 1}, {ID: 2}}, nil)

	profiles, err := svc.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}
