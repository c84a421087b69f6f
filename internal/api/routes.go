package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Get("/config", s.handleConfig)
		r.Get("/data", s.handleData)
		r.Get("/progress/{username}", s.handleProgress)
		r.Post("/normalize", s.handleNormalize)
		r.Post("/stats", s.handleStats)
		r.Post("/ai", s.handleCoach)

		r.Get("/profiles", s.handleProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Get("/profiles/{id}", s.handleGetProfile)
		r.Delete("/profiles/{id}", s.handleDeleteProfile)
		r.Post("/profiles/{id}/sync", s.handleSyncProfile)
		r.Get("/profiles/{id}/snapshots", s.handleSnapshots)
	})

	return r
}
