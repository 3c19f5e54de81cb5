// Package api exposes run history and on-demand reconciliation over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bartoszrychlicki/invoice-finder/internal/api/handlers"
	"github.com/bartoszrychlicki/invoice-finder/internal/api/middleware"
	"github.com/bartoszrychlicki/invoice-finder/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	reconciler handlers.Reconciler
}

// NewServer creates a new API server. If reconciler is nil, the reconcile
// endpoint is not registered.
func NewServer(cfg Config, repo storage.Repository, reconciler handlers.Reconciler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:     cfg,
		router:     chi.NewRouter(),
		logger:     logger,
		repo:       repo,
		reconciler: reconciler,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.Get("/health", handlers.NewHealthHandler().ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		runsHandler := handlers.NewRunsHandler(s.repo)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
		r.Get("/runs/{id}/results", runsHandler.Results)
		r.Get("/stats", runsHandler.Stats)

		if s.reconciler != nil {
			reconcileHandler := handlers.NewReconcileHandler(s.reconciler)
			r.Post("/reconcile", reconcileHandler.Start)
		}
	})
}

// Router returns the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for requests. Blocks until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("API server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
