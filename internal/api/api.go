// Package api serves the callviz pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        build info
//	GET  /metrics        Prometheus metrics (when enabled)
//	POST /v1/export      annotated DOT (or ?format=svg|png)
//	POST /v1/simplify    short labels for signatures
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/callviz/pkg/observability"
	"github.com/matzehuels/callviz/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// requestTimeout bounds a single request, including Graphviz rendering.
const requestTimeout = 60 * time.Second

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	metrics  http.Handler
}

// RouterOption configures [NewRouter].
type RouterOption func(*Server)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) RouterOption {
	return func(s *Server) { s.metrics = h }
}

// NewRouter returns the HTTP handler for the API. defaults supplies the
// covered color, constructor label and cache TTL used when a request does
// not override them.
func NewRouter(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger, opts ...RouterOption) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, defaults: defaults, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/export", s.handleExport)
		r.Post("/simplify", s.handleSimplify)
	})

	return r
}

// logRequests logs each request and reports it to the API hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.API().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.API().OnResponse(r.Context(), r.Method, routePattern(r), status, d)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d.Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// routePattern returns the matched chi route, or "unmatched" for 404s.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
