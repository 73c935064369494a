package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/RxMed-Intelligence/internal/interfaces/http"
	"github.com/turtacn/RxMed-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/RxMed-Intelligence/internal/ocr"
)

type serveOptions struct {
	port int
}

func newServeCmd(root *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(root, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (overrides config)")

	return cmd
}

func runServe(root *RootOptions, opts *serveOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      []string{cfg.Log.Output},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		Subsystem:            cfg.Metrics.Subsystem,
		EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
		EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
	}, logger)
	if err != nil {
		return err
	}
	metrics := prometheus.NewAppMetrics(collector)

	p := buildPipeline(cfg, logger, metrics)
	textProvider := ocr.NewChain(cfg.OCR, logger, metrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler:    handlers.NewAnalysisHandler(p.service, logger),
		TerminologyHandler: handlers.NewTerminologyHandler(p.mapper, p.checker, p.client, logger),
		OCRHandler:         handlers.NewOCRHandler(textProvider, logger),
		HealthHandler:      handlers.NewHealthHandler(Version),
		Logger:             logger,
		Metrics:            metrics,
		MetricsCollector:   collector,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
		logger.Info("shutdown signal received")
		return server.Stop(context.Background())
	}
}
