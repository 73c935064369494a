// Package cli implements the rxmed command-line interface: an in-process
// pipeline for one-off analysis and lookups, plus the server entry point.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/RxMed-Intelligence/internal/application/analysis"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/extraction"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/cache"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/internal/intelligence/medner"
	"github.com/turtacn/RxMed-Intelligence/internal/safety"
	"github.com/turtacn/RxMed-Intelligence/internal/terminology"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	OutputJSON bool
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "rxmed",
		Short:   "RxMed-Intelligence prescription analysis pipeline",
		Long:    "RxMed-Intelligence extracts medications from prescription text,\nmaps them to RxNorm concepts, and evaluates dosing safety, drug\ninteractions, and allergy-driven alternatives.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.OutputJSON, "json", false, "emit JSON instead of text output")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newLookupCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves the effective configuration for a command run.  With no
// --config flag the environment (plus defaults) is the sole source.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// newLogger builds the CLI logger: console format so output stays readable.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// pipeline bundles the components a CLI command may need.
type pipeline struct {
	service analysis.Service
	mapper  terminology.Mapper
	checker terminology.InteractionChecker
	client  terminology.Client
}

// buildPipeline wires the full in-process analysis pipeline.  metrics is nil
// for one-off commands; Redis is used only when enabled in configuration.
func buildPipeline(cfg *config.Config, logger logging.Logger, metrics *prometheus.AppMetrics) pipeline {
	var store cache.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		store = cache.NewRedisCache(cfg.Redis, logger)
	}

	client := terminology.NewHTTPClient(cfg.Terminology, logger)
	mapper := terminology.NewMapper(client, store, cfg.Terminology, logger, metrics)
	checker := terminology.NewInteractionChecker(client, logger, metrics)

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

	service := analysis.NewService(coordinator, mapper, checker, evaluator, advisor,
		cfg.Analysis, logger, metrics)

	return pipeline{
		service: service,
		mapper:  mapper,
		checker: checker,
		client:  client,
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
