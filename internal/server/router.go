package server

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"catalogapi/internal/auth"
	"catalogapi/internal/catalog"
	"catalogapi/internal/httpx"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Options struct {
	JWTSecret          string
	RateLimitRPS       float64
	RateLimitBurst     int
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	EnableHSTS         bool
	TrustedProxies     []netip.Prefix
	Logger             *zap.Logger
}

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

type Router struct {
	http.Handler
	limiter *httpx.RateLimitMiddleware
}

// NewRouter wires the middleware chain and the catalog routes.
func NewRouter(opts Options, catalogHandler *catalog.HTTPHandler, ready ReadyFunc) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := httpx.NewRateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst, opts.TrustedProxies)

	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(logger))
	r.Use(httpx.RecoveryMiddleware(logger))
	r.Use(httpx.TracingMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware(opts.EnableHSTS))
	r.Use(httpx.CORSMiddleware(opts.CORSAllowedOrigins))
	r.Use(limiter.Middleware)
	r.Use(httpx.RequestSizeLimitMiddleware(opts.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/libros", func(r chi.Router) {
		r.Use(httpx.AuthMiddleware(opts.JWTSecret))

		read := r.With(httpx.Authorize(auth.ReadCatalog))
		read.Get("/buscar", catalogHandler.Search)
		read.Get("/{id}", catalogHandler.GetBook)
		read.Get("/{id}/disponible", catalogHandler.IsAvailable)

		r.With(httpx.Authorize(auth.ManageCatalog)).Put("/{id}/disponibilidad", catalogHandler.UpdateAvailability)
	})

	return &Router{Handler: r, limiter: limiter}
}

// Close stops background work owned by the router.
func (r *Router) Close() {
	r.limiter.Stop()
}
