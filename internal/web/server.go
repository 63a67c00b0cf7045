// Package web provides the HTTP API for listing reconciliation runs.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/makoto1101/check-publication-status/internal/config"
	"github.com/makoto1101/check-publication-status/internal/metrics"
	"github.com/makoto1101/check-publication-status/internal/reconcile"
	mw "github.com/makoto1101/check-publication-status/internal/web/middleware"
)

// Server is the HTTP server of the reconciliation service.
type Server struct {
	service *reconcile.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiter    *mw.RateLimiter
	runLimiter *mw.RateLimiter
	stop       context.CancelFunc
}

// NewServer creates a Server for service configured by cfg.
func NewServer(service *reconcile.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = mw.NewRateLimiter(cfg.Rate.RequestsPerMinute)
		s.limiter.OnLimit = rateLimited
		s.runLimiter = mw.NewRateLimiter(cfg.Rate.RunLimit)
		s.runLimiter.OnLimit = rateLimited

		ctx, cancel := context.WithCancel(context.Background())
		s.stop = cancel
		go s.limiter.Cleanup(ctx)
		go s.runLimiter.Cleanup(ctx)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	if s.limiter != nil {
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
		}

		r.Get("/channels", s.handleChannels)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.With(s.limitRuns).Post("/", s.handleCreateRun)

			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
				r.Get("/export", s.handleExportRun)
			})
		})
	})
}

// limitRuns applies the stricter run submission limit.
func (s *Server) limitRuns(next http.Handler) http.Handler {
	if s.runLimiter == nil {
		return next
	}
	return s.runLimiter.Handler(next)
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stop != nil {
		s.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
