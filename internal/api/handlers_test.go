package api_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/duodash/internal/api"
	"github.com/vytor/duodash/internal/coach"
	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/services"
	"github.com/vytor/duodash/internal/testutil/mocks"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

type fixture struct {
	progress *mocks.MockProgressService
	profiles *mocks.MockProfileService
	coach    *mocks.MockCoachService
	server   *api.Server
	handler  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		progress: new(mocks.MockProgressService),
		profiles: new(mocks.MockProfileService),
		coach:    new(mocks.MockCoachService),
	}
	f.server = &api.Server{
		ProgressService: f.progress,
		ProfileService:  f.profiles,
		CoachService:    f.coach,
		DB:              pingerFunc(func(context.Context) error { return nil }),
		DefaultUsername: "owl",
		Configured:      true,
	}
	f.handler = f.server.Routes()
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = f.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	f.server.DB = pingerFunc(func(context.Context) error { return stderrors.New("database is locked") })
	rec = httptest.NewRecorder()
	f.server.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestConfigEndpoint(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodGet, "/api/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"configured": true}`, rec.Body.String())
}

func TestDataEndpoint(t *testing.T) {
	f := newFixture()
	f.progress.On("GetProgress", mock.Anything, "owl", true).Return(&models.Dashboard{
		Progress: models.UserProgress{Streak: 12},
		Cached:   false,
	}, nil)

	rec := f.do(http.MethodGet, "/api/data?refresh=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 12, got.Progress.Streak)
}

func TestDataEndpoint_NotConfigured(t *testing.T) {
	f := newFixture()
	f.server.DefaultUsername = ""
	f.handler = f.server.Routes()

	rec := f.do(http.MethodGet, "/api/data", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.ErrCodeNotConfigured, errorCode(t, rec))
}

func TestProgressEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: errors.NewNotFoundError("user", "ghost"), wantStatus: 404, wantCode: errors.ErrCodeNotFound},
		{name: "upstream", err: errors.NewUpstreamError("duolingo", stderrors.New("timeout")), wantStatus: 502, wantCode: errors.ErrCodeUpstream},
		{name: "plain error", err: stderrors.New("boom"), wantStatus: 500, wantCode: errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.progress.On("GetProgress", mock.Anything, "ghost", false).Return(nil, tt.err)

			rec := f.do(http.MethodGet, "/api/progress/ghost", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	f := newFixture()
	body := `{"streak": 3}`
	f.progress.On("NormalizeRaw", mock.Anything, []byte(body)).Return(&models.Dashboard{
		Progress: models.UserProgress{Streak: 3},
	}, nil)

	rec := f.do(http.MethodPost, "/api/normalize", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/normalize", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeBadRequest, errorCode(t, rec))
}

func TestNormalizeEndpoint_InvalidInput(t *testing.T) {
	f := newFixture()
	f.progress.On("NormalizeRaw", mock.Anything, []byte(`[1]`)).Return(nil, errors.NewInvalidInputError(stderrors.New("expected object")))

	rec := f.do(http.MethodPost, "/api/normalize", `[1]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidInput, errorCode(t, rec))
}

func TestNormalizeEndpoint_BodyTooLarge(t *testing.T) {
	f := newFixture()
	f.server.MaxBodyBytes = 16
	f.handler = f.server.Routes()

	rec := f.do(http.MethodPost, "/api/normalize", `{"streak": 1234567890123}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.progress.AssertNotCalled(t, "NormalizeRaw", mock.Anything, mock.Anything)
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture()
	body := `[{"date": "2024-03-06", "xp": 10}]`
	f.progress.On("Stats", mock.Anything, []byte(body)).Return(&services.StatsResult{
		Stats: models.AchievementStats{CurrentStreak: 1, TotalXP: 10},
	}, nil)

	rec := f.do(http.MethodPost, "/api/stats", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentStreak":1`)
}

func TestCoachEndpoint(t *testing.T) {
	f := newFixture()
	summary := models.CoachSummary{Streak: 5, TotalXP: 100, CourseCount: 1, LearningLanguage: "French"}
	f.coach.On("Analyze", mock.Anything, summary).Return(&coach.Result{
		Analysis: "Hoot hoot!",
		Provider: coach.ProviderGemini,
		Model:    coach.DefaultModel,
	}, nil)

	rec := f.do(http.MethodPost, "/api/ai", `{"userData": {
		"streak": 5, "totalXp": 100, "learningLanguage": "French",
		"courses": [{"id": "fr", "title": "French"}]
	}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"analysis": "Hoot hoot!", "provider": "gemini", "model": "gemini-2.5-flash"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/ai", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/ai", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileEndpoints(t *testing.T) {
	f := newFixture()
	created := &models.Profile{ID: 4, Username: "fox", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	f.profiles.On("CreateProfile", mock.Anything, models.CreateProfileRequest{Username: "fox"}).Return(created, nil)
	f.profiles.On("ListProfiles", mock.Anything).Return([]models.Profile{*created}, nil)
	f.profiles.On("GetProfile", mock.Anything, int64(4)).Return(created, nil)
	f.profiles.On("GetProfile", mock.Anything, int64(5)).Return(nil, errors.NewNotFoundError("profile", 5))
	f.profiles.On("DeleteProfile", mock.Anything, int64(4)).Return(nil)
	f.profiles.On("SyncProfile", mock.Anything, int64(4)).Return(created, nil)

	rec := f.do(http.MethodPost, "/api/profiles", `{"username": "fox"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/profiles", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"fox"`)

	rec = f.do(http.MethodGet, "/api/profiles/4", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/profiles/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/profiles/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/profiles/4/sync", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(http.MethodDelete, "/api/profiles/4", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSnapshotsEndpoint(t *testing.T) {
	f := newFixture()
	f.profiles.On("GetProfile", mock.Anything, int64(4)).Return(&models.Profile{ID: 4, Username: "fox"}, nil)

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	want := models.SnapshotFilter{Username: "fox", Limit: 10, Offset: 5, OrderDir: "ASC", Since: &since}
	f.progress.On("History", mock.Anything, want).Return([]models.SnapshotSummary{{ID: "s1", Username: "fox"}}, 6, nil)

	rec := f.do(http.MethodGet, "/api/profiles/4/snapshots?limit=10&offset=5&order=asc&since=2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snapshots []models.SnapshotSummary `json:"snapshots"`
		Total     int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 6, body.Total)
	require.Len(t, body.Snapshots, 1)
	assert.Equal(t, "s1", body.Snapshots[0].ID)

	for _, q := range []string{"limit=x", "offset=-1", "order=sideways", "since=yesterday"} {
		rec := f.do(http.MethodGet, "/api/profiles/4/snapshots?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	f := newFixture()
	f.progress.On("GetProgress", mock.Anything, "boom", false).Run(func(mock.Arguments) {
		panic("unexpected")
	})

	rec := f.do(http.MethodGet, "/api/progress/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errors.ErrCodeInternal, errorCode(t, rec))
}

func TestCompressesJSON(t *testing.T) {
	f := newFixture()
	f.progress.On("GetProgress", mock.Anything, "owl", false).Return(&models.Dashboard{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}
