package ocr

import (
	"context"

	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// TextProvider is the pipeline-facing OCR contract: one call, the best text
// the backend chain can produce.
type TextProvider interface {
	ExtractText(ctx context.Context, image []byte) (Result, error)
}

// Step pairs a backend with its acceptance threshold.
type Step struct {
	Provider  Provider
	Threshold float64
}

// chain tries each backend in order and accepts the first result whose
// confidence exceeds that backend's threshold.  When every backend falls
// short, the best rejected result is returned with its confidence capped.
type chain struct {
	steps   []Step
	cfg     config.OCRConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ TextProvider = (*chain)(nil)

// NewChain builds the standard two-backend chain from configuration.
// metrics may be nil.
func NewChain(cfg config.OCRConfig, logger logging.Logger, metrics *prometheus.AppMetrics) TextProvider {
	primary := NewHTTPProvider("primary", cfg.PrimaryEndpoint, cfg)
	secondary := NewHTTPProvider("secondary", cfg.SecondaryEndpoint, cfg)
	return NewChainWithProviders(cfg, logger, metrics,
		Step{Provider: primary, Threshold: cfg.PrimaryThreshold},
		Step{Provider: secondary, Threshold: cfg.SecondaryThreshold},
	)
}

// NewChainWithProviders builds a chain over explicit steps, in priority order.
func NewChainWithProviders(cfg config.OCRConfig, logger logging.Logger, metrics *prometheus.AppMetrics, steps ...Step) TextProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &chain{
		steps:   steps,
		cfg:     cfg,
		logger:  logger.Named("ocr.chain"),
		metrics: metrics,
	}
}

func (c *chain) ExtractText(ctx context.Context, image []byte) (Result, error) {
	if len(image) == 0 {
		return Result{}, errors.New(errors.ErrCodeOCRInvalidImage, "image data is empty")
	}
	if c.cfg.MaxImageSizeBytes > 0 && int64(len(image)) > c.cfg.MaxImageSizeBytes {
		return Result{}, errors.New(errors.ErrCodeOCRImageTooLarge, "image exceeds configured size limit")
	}

	var best Result
	attempted := false
	for _, step := range c.steps {
		if !step.Provider.Available() {
			continue
		}
		attempted = true

		text, confidence, err := step.Provider.Extract(ctx, image)
		if err != nil {
			c.logger.Warn("ocr backend failed",
				logging.String("provider", step.Provider.Name()),
				logging.Err(err))
			if c.metrics != nil {
				prometheus.RecordOCRAttempt(c.metrics, step.Provider.Name(), false, 0)
			}
			continue
		}
		if c.metrics != nil {
			prometheus.RecordOCRAttempt(c.metrics, step.Provider.Name(), true, confidence)
		}

		// Acceptance is strict: a result exactly at the threshold falls
		// through to the next backend.
		if confidence > step.Threshold {
			c.logger.Info("ocr backend accepted",
				logging.String("provider", step.Provider.Name()),
				logging.Float64("confidence", confidence))
			return Result{Text: text, Confidence: confidence, Provider: step.Provider.Name()}, nil
		}

		c.logger.Debug("ocr backend below threshold",
			logging.String("provider", step.Provider.Name()),
			logging.Float64("confidence", confidence),
			logging.Float64("threshold", step.Threshold))
		if confidence > best.Confidence || best.Provider == "" {
			best = Result{Text: text, Confidence: confidence, Provider: step.Provider.Name()}
		}
	}

	if !attempted {
		return Result{}, errors.New(errors.ErrCodeOCRNotAvailable, "no OCR backend configured")
	}

	// Basic fallback: reuse the best low-confidence text rather than drop it.
	if best.Provider != "" {
		if best.Confidence > c.cfg.BasicConfidenceCap {
			best.Confidence = c.cfg.BasicConfidenceCap
		}
		best.Provider = "basic"
		return best, nil
	}

	return Result{}, errors.New(errors.ErrCodeOCRFailed, "all OCR backends failed")
}
