package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Command entry point. Perimeter authentication happens upstream of
	// this service; the path deliberately sits outside /api/v1 because
	// it is the stable contract with the voice front-end.
	r.Post("/command", s.handleCommand)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/audit", s.handleListAudit)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// handleHealth returns the server health status, including the state of
// the session/audit store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	database := "ok"

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			database = "unavailable"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"database": database,
	})
}
