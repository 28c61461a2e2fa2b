// Package web serves the listabob JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
	"github.com/JonMunkholm/listabob/internal/web/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the list API.
type Server struct {
	service *core.Service
	db      Pinger
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server and registers middleware and routes.
func NewServer(service *core.Service, db Pinger, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		db:      db,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(withClient)

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			r.Get("/system/stats", s.handleStats)
			r.Get("/column-types", s.handleColumnTypes)

			r.Get("/lists", s.handleListLists)
			r.Post("/lists", s.handleCreateList)
			r.Route("/lists/{listID}", func(r chi.Router) {
				r.Get("/", s.handleGetList)
				r.Put("/", s.handleUpdateList)
				r.Delete("/", s.handleDeleteList)

				r.Get("/columns", s.handleListColumns)
				r.Post("/columns", s.handleCreateColumn)
				r.Put("/columns/reorder", s.handleReorderColumns)
				r.Put("/columns/{columnID}", s.handleUpdateColumn)
				r.Delete("/columns/{columnID}", s.handleDeleteColumn)

				r.Get("/items", s.handleListItems)
				r.Post("/items", s.handleCreateItem)
				r.Get("/items/{itemID}", s.handleGetItem)
				r.Put("/items/{itemID}", s.handleUpdateItem)
				r.Delete("/items/{itemID}", s.handleDeleteItem)
				r.Post("/items/{itemID}/restore", s.handleRestoreItem)
				r.Delete("/items/{itemID}/purge", s.handlePurgeItem)
				r.Get("/recycle-bin", s.handleRecycleBin)

				r.Get("/views", s.handleListViews)
				r.Post("/views", s.handleCreateView)
				r.Put("/views/{viewID}", s.handleUpdateView)
				r.Delete("/views/{viewID}", s.handleDeleteView)
			})

			r.Route("/import/csv", func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(middleware.NewRateLimiter(s.cfg.Rate.ImportLimit).Middleware)
				}
				r.Post("/preview", s.handlePreviewCSV)
				r.Post("/create", s.handleMaterializeCSV)
			})
			r.Get("/export/csv/{listID}", s.handleExportCSV)

			r.Get("/templates", s.handleListTemplates)
			r.Get("/templates/{templateID}", s.handleGetTemplate)
			r.Post("/templates/{templateID}/create-list", s.handleCreateFromTemplate)
		})
	})
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully:
// drain runs first (imports, background jobs), then in-flight requests
// finish. Both share the configured shutdown timeout. Run returns only
// once shutdown has completed.
func (s *Server) Run(ctx context.Context, ln net.Listener, drain func(context.Context)) error {
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", ln.Addr().String())
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if drain != nil {
		drain(shutdownCtx)
	}
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
