// Package http wires the API route tree and the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/RxMed-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required to
// construct the route tree.
type RouterConfig struct {
	// Handlers
	AnalysisHandler    *handlers.AnalysisHandler
	TerminologyHandler *handlers.TerminologyHandler
	OCRHandler         *handlers.OCRHandler
	HealthHandler      *handlers.HealthHandler

	// Middleware
	CORSConfig    *middleware.CORSConfig
	LoggingConfig *middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete route tree: global middleware, public
// probes, the metrics endpoint, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORSConfig != nil {
		corsCfg = *cfg.CORSConfig
	}
	r.Use(middleware.CORS(corsCfg))

	logCfg := middleware.DefaultLoggingConfig()
	if cfg.LoggingConfig != nil {
		logCfg = *cfg.LoggingConfig
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, logCfg))

	// Public probes
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AnalysisHandler != nil {
			api.Post("/analyze", cfg.AnalysisHandler.Analyze)
		}
		if cfg.TerminologyHandler != nil {
			api.Route("/rxnorm", func(rr chi.Router) {
				rr.Get("/lookup", cfg.TerminologyHandler.Lookup)
				rr.Get("/rxcui", cfg.TerminologyHandler.ResolveRxCUI)
			})
			api.Post("/interactions", cfg.TerminologyHandler.CheckInteractions)
		}
		if cfg.OCRHandler != nil {
			api.Post("/ocr/extract", cfg.OCRHandler.Extract)
		}
	})

	return r
}
