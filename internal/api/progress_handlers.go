package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
)

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"configured": s.Configured})
}

// handleData serves the dashboard for the configured account.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if s.DefaultUsername == "" {
		handleError(w, r, errors.NewNotConfiguredError("DUOLINGO_USERNAME"))
		return
	}
	s.serveProgress(w, r, s.DefaultUsername)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.serveProgress(w, r, chi.URLParam(r, "username"))
}

func (s *Server) serveProgress(w http.ResponseWriter, r *http.Request, username string) {
	log := logger.FromContext(r.Context())
	force := isTruthy(r.URL.Query().Get("refresh"))
	log.Debug("serving progress: username=%s, refresh=%v", username, force)

	dashboard, err := s.ProgressService.GetProgress(r.Context(), username, force)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	dashboard, err := s.ProgressService.NormalizeRaw(r.Context(), body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dashboard)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.ProgressService.Stats(r.Context(), body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

type coachRequest struct {
	UserData *models.UserProgress `json:"userData"`
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req coachRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.UserData == nil {
		handleError(w, r, errors.NewBadRequestError("userData is required"))
		return
	}

	result, err := s.CoachService.Analyze(r.Context(), req.UserData.Summary())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
