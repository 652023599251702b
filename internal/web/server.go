// Package web provides the HTTP API for the conversion service: health,
// ZIP-bundle conversion, and run history.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/enerflow/compresor-report/internal/config"
	"github.com/enerflow/compresor-report/internal/store"
	webmw "github.com/enerflow/compresor-report/internal/web/middleware"
)

// Server is the HTTP server for the conversion API.
type Server struct {
	cfg     *config.Config
	runs    *store.Store // nil disables run history
	limiter *JobLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. runs may be nil when the history store is
// disabled.
func NewServer(cfg *config.Config, runs *store.Store) *Server {
	s := &Server{
		cfg:     cfg,
		runs:    runs,
		limiter: NewJobLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(chimw.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/convert", s.handleConvert)
		r.Get("/runs", s.handleRuns)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening for HTTP requests. It blocks until the server
// stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ActiveJobs reports the number of conversions currently running.
func (s *Server) ActiveJobs() int { return s.limiter.ActiveCount() }

// WaitForJobs blocks until running conversions finish or ctx expires.
func (s *Server) WaitForJobs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
