package main

import (
	"net/http"

	"github.com/turtacn/RxMed-Intelligence/internal/application/analysis"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/extraction"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/cache"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/internal/intelligence/medner"
	httpserver "github.com/turtacn/RxMed-Intelligence/internal/interfaces/http"
	"github.com/turtacn/RxMed-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/RxMed-Intelligence/internal/ocr"
	"github.com/turtacn/RxMed-Intelligence/internal/safety"
	"github.com/turtacn/RxMed-Intelligence/internal/terminology"
)

// buildRouter wires every pipeline component into the HTTP route tree.
func buildRouter(cfg *config.Config, logger logging.Logger) (http.Handler, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		Subsystem:            cfg.Metrics.Subsystem,
		EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
	}, logger)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	var store cache.Cache = cache.NopCache{}
	var checkers []handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, logger)
		store = redisCache
		if checker, ok := redisCache.(handlers.HealthChecker); ok {
			checkers = append(checkers, checker)
		}
	}

	client := terminology.NewHTTPClient(cfg.Terminology, logger)
	mapper := terminology.NewMapper(client, store, cfg.Terminology, logger, metrics)
	interactionChecker := terminology.NewInteractionChecker(client, logger, metrics)

	normalizer := extraction.NewTextNormalizer()
	pattern := extraction.NewPatternExtractor(logger)
	var model extraction.ModelExtractor
	if cfg.Tagger.Enabled {
		tagger := medner.NewHTTPTagger(cfg.Tagger, logger)
		model = medner.NewModelExtractor(tagger, cfg.Tagger, logger)
	}
	coordinator := extraction.NewCoordinator(normalizer, model, pattern, logger)

	evaluator := safety.NewEvaluator(logger, metrics)
	advisor := safety.NewAlternativeAdvisor(logger)

	service := analysis.NewService(coordinator, mapper, interactionChecker,
		evaluator, advisor, cfg.Analysis, logger, metrics)

	textProvider := ocr.NewChain(cfg.OCR, logger, metrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler:    handlers.NewAnalysisHandler(service, logger),
		TerminologyHandler: handlers.NewTerminologyHandler(mapper, interactionChecker, client, logger),
		OCRHandler:         handlers.NewOCRHandler(textProvider, logger),
		HealthHandler:      handlers.NewHealthHandler(version, checkers...),
		Logger:             logger,
		Metrics:            metrics,
		MetricsCollector:   collector,
	})

	return router, nil
}
