// Package server provides the FieldSync HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/fieldsync/internal/config"
	"github.com/jonathan/fieldsync/internal/diagnosis"
	"github.com/jonathan/fieldsync/internal/metrics"
	"github.com/jonathan/fieldsync/internal/server/middleware"
	"github.com/jonathan/fieldsync/internal/server/ratelimit"
	"github.com/jonathan/fieldsync/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Store is the data the API reads. Both the PostgreSQL store and the
// in-memory catalog implement it.
type Store interface {
	diagnosis.ErrorCodeLookup
	diagnosis.IssueCatalog
	ListJobs(ctx context.Context, status types.JobStatus, limit, offset int) ([]types.Job, int, error)
	GetJob(ctx context.Context, id string) (*types.Job, error)
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	diagnoser   *diagnosis.Diagnoser
	environment string
	logger      *zap.Logger
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics registry. Without it a private registry is used.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a new server instance
func New(cfg *config.Config, store Store, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	s := &Server{
		store:       store,
		environment: cfg.Environment,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	s.diagnoser = diagnosis.NewDiagnoser(store, store,
		diagnosis.WithLogger(s.logger.Named("diagnosis")),
		diagnosis.WithRecorder(s.metrics),
	)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit))
	if cfg.JWT.Enabled() {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /api/diagnose", s.handleDiagnose)

	// Job endpoints
	mux.Handle("GET /api/jobs", s.requireTechnician(http.HandlerFunc(s.handleListJobs)))
	mux.Handle("GET /api/jobs/{id}", s.requireTechnician(http.HandlerFunc(s.handleGetJob)))

	return s.withLogging(s.withCORS(s.withRateLimit(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			zap.String("addr", ln.Addr().String()),
			zap.String("environment", s.environment),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// requireTechnician guards h with bearer authentication when tokens are configured.
func (s *Server) requireTechnician(h http.Handler) http.Handler {
	if s.jwtService == nil {
		return h
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
