// Package apihttp assembles the HTTP surface: routing, access logging, health and metrics.
package apihttp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contract-ledger/internal/auth"
	"contract-ledger/internal/observability/logging"
)

// Pinger reports dependency health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Mounter registers routes on a router.
type Mounter interface {
	Routes(r chi.Router)
}

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Logger *logging.Logger
	// Auth guards every route except /healthz and /metrics; nil disables auth.
	Auth   *auth.Middleware
	Health Pinger
	Mounts []Mounter
}

// NewRouter builds the service router.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := logging.OrNop(cfg.Logger).WithComponent("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(cfg.Health))

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth.Wrap)
		}
		for _, m := range cfg.Mounts {
			m.Routes(r)
		}
	})
	return r
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func loggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLogger := logger.With("requestID", middleware.GetReqID(r.Context()))
			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))
			reqLogger.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
