package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/models"
)

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.ProfileService.ListProfiles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"profiles": profiles})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.CreateProfile(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ProfileService.DeleteProfile(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.SyncProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]any{"queued": true, "profile": profile})
}

// handleSnapshots lists persisted snapshots of a profile.
// Query: limit, offset, order (asc|desc), since (RFC 3339 or YYYY-MM-DD).
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter, err := snapshotFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Username = profile.Username

	summaries, total, err := s.ProgressService.History(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"snapshots": summaries, "total": total})
}

func snapshotFilter(r *http.Request) (models.SnapshotFilter, error) {
	q := r.URL.Query()
	var filter models.SnapshotFilter

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.NewBadRequestError("invalid limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.NewBadRequestError("invalid offset")
		}
		filter.Offset = n
	}
	switch q.Get("order") {
	case "", "desc", "DESC":
		filter.OrderDir = "DESC"
	case "asc", "ASC":
		filter.OrderDir = "ASC"
	default:
		return filter, errors.NewBadRequestError("order must be asc or desc")
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			since, err = time.Parse("2006-01-02", v)
		}
		if err != nil {
			return filter, errors.NewBadRequestError("invalid since")
		}
		filter.Since = &since
	}
	return filter, nil
}
