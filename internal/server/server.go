// Package server exposes the simulator over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasksim/internal/sched"
)

// Request limits. DefaultMaxWork caps the summed task durations of one
// request, which bounds its dispatches. DefaultMaxScores caps the oracle
// calls a heuristic run may need.
const (
	DefaultMaxWork    = 1_000_000
	DefaultMaxTasks   = 10_000
	DefaultMaxScores  = 5_000_000
	DefaultRunTimeout = 30 * time.Second
)

// Server is the simulation REST API.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	defaults  sched.Config
	registry  *prometheus.Registry
	metrics   *metrics
	startTime time.Time

	maxWork    int64
	maxTasks   int
	maxScores  int64
	runTimeout time.Duration
}

// Option configures optional Server settings.
type Option func(*Server)

// WithRegistry sets the Prometheus registry served at /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMaxWork overrides DefaultMaxWork.
func WithMaxWork(n int64) Option {
	return func(s *Server) {
		s.maxWork = n
	}
}

// WithMaxTasks overrides DefaultMaxTasks.
func WithMaxTasks(n int) Option {
	return func(s *Server) {
		s.maxTasks = n
	}
}

// WithMaxScores overrides DefaultMaxScores.
func WithMaxScores(n int64) Option {
	return func(s *Server) {
		s.maxScores = n
	}
}

// WithRunTimeout overrides DefaultRunTimeout.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.runTimeout = d
	}
}

// New creates a Server. defaults fill any field a request leaves out.
func New(defaults sched.Config, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger.With("component", "server"),
		defaults:   defaults,
		startTime:  time.Now(),
		maxWork:    DefaultMaxWork,
		maxTasks:   DefaultMaxTasks,
		maxScores:  DefaultMaxScores,
		runTimeout: DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/policies", s.handleListPolicies)
		r.Post("/simulations", s.handleSimulate)
		r.Post("/comparisons", s.handleCompare)
	})
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
