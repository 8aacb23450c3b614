// Package httpserver provides the HTTP REST API server for the exhibit
// service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/comic-con-museum/fan-forge/internal/assembler"
	"github.com/comic-con-museum/fan-forge/internal/database"
	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// ExhibitService is the application surface the HTTP layer exposes.
// *assembler.Assembler implements it.
type ExhibitService interface {
	Feed(ctx context.Context, viewer *domain.User, feedType domain.FeedType, startIdx int) (*assembler.FeedPage, error)
	Detail(ctx context.Context, viewer *domain.User, id int64) (*assembler.ExhibitDetail, error)
	Create(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error)
	Update(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (*assembler.ExhibitDetail, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
	Support(ctx context.Context, actor *domain.User, exhibitID int64, survey *domain.Survey) (bool, error)
	Unsupport(ctx context.Context, actor *domain.User, exhibitID int64) (bool, error)
}

// Compile-time check that the assembler satisfies the service surface.
var _ ExhibitService = (*assembler.Assembler)(nil)

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	assembler  ExhibitService
	db         *database.DB
	validate   *validator.Validate
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// WriteRateLimit and WriteRateBurst shape the token bucket applied to
	// the mutating endpoints.
	WriteRateLimit float64
	WriteRateBurst int
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(cfg Config, asm ExhibitService, db *database.DB, logger zerolog.Logger) *Server {
	s := &Server{
		assembler: asm,
		db:        db,
		validate:  validator.New(),
		logger:    logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter(cfg)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(identityMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	// Read endpoints
	r.Get("/feed/{feedType}", s.getFeed)
	r.Get("/exhibit/{exhibitID}", s.getExhibit)

	// Write endpoints share one token bucket.
	writeLimit := rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.WriteRateLimit), cfg.WriteRateBurst))
	r.Group(func(r chi.Router) {
		r.Use(writeLimit)

		r.Post("/exhibit", s.createExhibit)
		r.Put("/exhibit/{exhibitID}", s.updateExhibit)
		r.Delete("/exhibit/{exhibitID}", s.deleteExhibit)

		r.Put("/support/exhibit/{exhibitID}", s.supportExhibit)
		r.Delete("/support/exhibit/{exhibitID}", s.unsupportExhibit)
	})

	return r
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status backed by pool health.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
