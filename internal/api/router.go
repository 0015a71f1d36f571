package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/profilejoteam/profilejo-website-sub000/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	CreateSession http.HandlerFunc
	DeleteSession http.HandlerFunc
	PostEvents    http.HandlerFunc
	PostMessage   http.HandlerFunc
	GetOutbox     http.HandlerFunc
	GetAnalysis   http.HandlerFunc

	// SessionMiddleware loads {sessionID} and checks it belongs to the caller.
	SessionMiddleware func(http.Handler) http.Handler
	AuthMiddleware    func(http.Handler) http.Handler
}

// HealthCheck is one readiness dependency. A nil Check reports the
// dependency as not configured.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimiter        func(http.Handler) http.Handler
	HealthChecks       []HealthCheck
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		health := map[string]string{"status": "healthy"}
		status := http.StatusOK
		for _, hc := range cfg.HealthChecks {
			switch {
			case hc.Check == nil:
				health[hc.Name] = "not configured"
			case hc.Check(ctx) != nil:
				health[hc.Name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			default:
				health[hc.Name] = "healthy"
			}
		}
		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter)
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(h.SessionMiddleware)
				r.Delete("/", h.DeleteSession)
				r.Post("/events", h.PostEvents)
				r.Post("/messages", h.PostMessage)
				r.Get("/outbox", h.GetOutbox)
				r.Get("/analysis", h.GetAnalysis)
			})
		})
	})

	return r
}
