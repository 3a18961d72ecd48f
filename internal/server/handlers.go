package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// healthTimeout bounds the database ping in /health.
const healthTimeout = 3 * time.Second

// handleRoot returns the service banner.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "FieldSync Pro API",
		"status":  "running",
		"version": Version,
	})
}

// handleHealth reports whether the data store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status":      "unhealthy",
			"database":    "error",
			"error":       err.Error(),
			"environment": s.environment,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"database":    "connected",
		"environment": s.environment,
	})
}
