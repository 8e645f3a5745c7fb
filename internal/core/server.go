// Package core provides the HTTP chassis of the local runner. It exposes the
// monitor's Runner over POST /v1/invoke together with health probes and a
// Prometheus scrape endpoint.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heaterwatch/internal/monitor"
)

// defaultRequestTimeout bounds every request context when no explicit
// RequestTimeout is configured.
const defaultRequestTimeout = 30 * time.Second

// Invoker runs one monitor invocation. *monitor.Runner satisfies it.
type Invoker interface {
	Run(ctx context.Context, req monitor.Request) monitor.Result
}

// Server encapsulates the local runner's HTTP dependencies.
type Server struct {
	Invoker      Invoker
	Logger       *slog.Logger
	HealthProbes []HealthProbe
	// MetricsHandler serves GET /metrics. Nil leaves the route unmounted.
	MetricsHandler http.Handler
	// RequestTimeout overrides defaultRequestTimeout when positive.
	RequestTimeout time.Duration

	router *chi.Mux
}

// NewServer validates dependencies and prepares the router. The caller
// mounts routes with MountRoutes after setting optional fields.
func NewServer(invoker Invoker, logger *slog.Logger) (*Server, error) {
	if invoker == nil {
		return nil, fmt.Errorf("invoker must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &Server{
		Invoker: invoker,
		Logger:  logger,
		router:  chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MountRoutes registers middleware and routes.
//
// Middleware order:
//  1. Recoverer      - outermost so every panic is caught
//  2. ContextTimeout - request deadline
//  3. RequestID      - correlation ID for the logs
//  4. RequestLogger  - structured access log
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/invoke", s.HandleInvoke)
	})
	s.router.Get("/health", s.HandleHealth)
	if s.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.MetricsHandler)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout > 0 {
		return s.RequestTimeout
	}
	return defaultRequestTimeout
}

// HandleInvoke decodes a monitor.Request and runs it. An empty body runs a
// NORMAL invocation. The response status mirrors Result.StatusCode.
func (s *Server) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	var req monitor.Request
	if r.ContentLength != 0 {
		if err := DecodeJSON(w, r, &req); err != nil && !isEmptyBody(err) {
			Error(w, r, err)
			return
		}
	}

	res := s.Invoker.Run(r.Context(), req)
	JSON(w, r, res.StatusCode, res)
}
