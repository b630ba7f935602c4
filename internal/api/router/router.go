package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/costwatch/costwatch/internal/api/handlers"
	"github.com/costwatch/costwatch/internal/api/middleware"
	"github.com/costwatch/costwatch/internal/config"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
)

// Handlers groups the HTTP handlers wired into the router.
type Handlers struct {
	Health    *handlers.HealthHandler
	Detection *handlers.DetectionHandler
	Anomaly   *handlers.AnomalyHandler // nil when persistence is disabled
}

// New builds the HTTP router.
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Health checks and metrics
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	// Detection
	r.Post("/api/v1/detections", h.Detection.Run)

	// Stored anomalies (needs the database)
	if h.Anomaly != nil {
		r.Route("/api/v1/anomalies", func(r chi.Router) {
			r.Get("/", h.Anomaly.List)
			r.Get("/summary", h.Anomaly.Summary)
		})
	}

	return r
}
