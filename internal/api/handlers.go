package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/duodash/internal/errors"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/services"
)

// DefaultMaxBodyBytes bounds pasted raw records and posted series.
const DefaultMaxBodyBytes = 8 << 20

// Pinger is satisfied by *sql.DB and *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	ProgressService services.ProgressService
	ProfileService  services.ProfileService
	CoachService    services.CoachService
	DB              Pinger

	// DefaultUsername backs GET /api/data.
	DefaultUsername string
	// Configured reports whether upstream credentials are set.
	Configured     bool
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewBadRequestError("request body too large")
		}
		return nil, errors.NewBadRequestError("failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.NewBadRequestError("request body is empty")
	}
	return body, nil
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid id")
	}
	return id, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
