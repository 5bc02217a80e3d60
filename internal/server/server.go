// Package server exposes a Tracker over a local JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/jobtracker/internal/metrics"
	"github.com/roach88/jobtracker/internal/tracker"
)

// Server is the tracker HTTP API.
type Server struct {
	Addr    string
	tracker *tracker.Tracker
	router  *chi.Mux
	server  *http.Server
	logger  *slog.Logger
	reg     *prom.Registry
}

// New creates a server for tr listening on addr. reg backs /metrics; a nil
// reg serves an empty registry.
func New(addr string, tr *tracker.Tracker, reg *prom.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		Addr:    addr,
		tracker: tr,
		router:  chi.NewRouter(),
		logger:  logger,
		reg:     reg,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.reg))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Get("/checklist", s.handleGetChecklist)
		r.Put("/checklist/{id}", s.handleSetTestResult)
		r.Post("/checklist/reset", s.handleResetChecklist)

		r.Get("/preferences", s.handleGetPreferences)
		r.Patch("/preferences", s.handlePatchPreferences)

		r.Get("/digest", s.handleGetDigest)
		r.Post("/digest", s.handleGenerateDigest)

		r.Post("/navigate/{route}", s.handleNavigate)

		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs/save", s.handleSaveJob)
		r.Post("/jobs/status", s.handleJobStatus)
		r.Post("/jobs/filter", s.handleJobFilter)

		r.Get("/notifications", s.handleNotifications)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("api server listening", "addr", s.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("api server listening", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a success response.
func (s *Server) Success(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// Error writes an error response. Server errors are logged.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: message})
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
