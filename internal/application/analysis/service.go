// Package analysis hosts the prescription analysis pipeline entry point: one
// extraction pass fanned out to terminology mapping, safety evaluation,
// interaction checking, and alternative suggestion over the same medication
// list.
package analysis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/extraction"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/internal/safety"
	"github.com/turtacn/RxMed-Intelligence/internal/terminology"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// Service is the pipeline entry point other layers build on.  The result
// shape is an external contract; HTTP handlers must preserve it verbatim.
type Service interface {
	Analyze(ctx context.Context, req rx.AnalysisRequest) (rx.AnalysisResult, error)
}

type service struct {
	coordinator extraction.Coordinator
	mapper      terminology.Mapper
	checker     terminology.InteractionChecker
	evaluator   safety.Evaluator
	advisor     safety.AlternativeAdvisor
	cfg         config.AnalysisConfig
	logger      logging.Logger
	metrics     *prometheus.AppMetrics
}

var _ Service = (*service)(nil)

// NewService wires the pipeline stages together.  metrics may be nil.
func NewService(
	coordinator extraction.Coordinator,
	mapper terminology.Mapper,
	checker terminology.InteractionChecker,
	evaluator safety.Evaluator,
	advisor safety.AlternativeAdvisor,
	cfg config.AnalysisConfig,
	logger logging.Logger,
	metrics *prometheus.AppMetrics,
) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		coordinator: coordinator,
		mapper:      mapper,
		checker:     checker,
		evaluator:   evaluator,
		advisor:     advisor,
		cfg:         cfg,
		logger:      logger.Named("analysis.service"),
		metrics:     metrics,
	}
}

func (s *service) Analyze(ctx context.Context, req rx.AnalysisRequest) (rx.AnalysisResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := s.logger.With(logging.String("request_id", requestID))

	if err := s.validate(&req); err != nil {
		return rx.AnalysisResult{}, err
	}
	req.Patient.Normalize()

	extractCtx, cancel := s.stageContext(ctx)
	result := s.coordinator.Extract(extractCtx, req.Text)
	cancel()

	if s.metrics != nil {
		prometheus.RecordExtraction(s.metrics, string(result.Source),
			result.Source != extraction.SourceNone, len(result.Medications), time.Since(start))
	}
	if result.Source == extraction.SourceNone {
		// The only escalated failure: nothing downstream can run without
		// at least one medication.
		return rx.AnalysisResult{}, errors.New(errors.ErrCodeNoMedicationsFound,
			"no medications found in the provided text")
	}

	logger.Info("extraction complete",
		logging.String("source", string(result.Source)),
		logging.Int("medications", len(result.Medications)))

	meds := result.Medications
	mappings := make([][]rx.RxNormMapping, len(meds))
	alerts := make([][]rx.SafetyAlert, len(meds))
	alternatives := make([][]rx.AlternativeMedication, len(meds))

	fanCtx, cancel := s.stageContext(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i, med := range meds {
		wg.Add(1)
		go func(i int, med rx.ExtractedMedication) {
			defer wg.Done()
			found := s.mapper.Search(fanCtx, med.DrugName, 0)
			for j := range found {
				found[j].SourceDrug = med.DrugName
			}
			mappings[i] = found
			alerts[i] = s.evaluator.Evaluate(med, req.Patient)
			if req.IncludeAlternatives {
				alternatives[i] = s.advisor.Suggest(med, req.Patient)
			}
		}(i, med)
	}
	wg.Wait()

	out := rx.AnalysisResult{
		RequestID:          requestID,
		Medications:        meds,
		Mappings:           flatten(mappings),
		Alerts:             flatten(alerts),
		Alternatives:       flatten(alternatives),
		AnalysisConfidence: rx.AggregateConfidence(meds),
	}

	// Interactions use the best mapping per medication; the best is the
	// first, since mappings are emitted in descending-confidence order.
	var rxcuis []string
	for _, perMed := range mappings {
		if len(perMed) > 0 {
			rxcuis = append(rxcuis, perMed[0].RxCUI)
		}
	}
	out.Interactions = s.checker.Check(fanCtx, rxcuis)

	out.ProcessingTimeMillis = time.Since(start).Milliseconds()
	logger.Info("analysis complete",
		logging.Int("mappings", len(out.Mappings)),
		logging.Int("alerts", len(out.Alerts)),
		logging.Int("interactions", len(out.Interactions)),
		logging.Float64("analysis_confidence", out.AnalysisConfidence),
		logging.Int64("processing_time_ms", out.ProcessingTimeMillis))
	return out, nil
}

func (s *service) validate(req *rx.AnalysisRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return errors.Validation("analysis", "text is required")
	}
	if s.cfg.MaxTextLength > 0 && len(req.Text) > s.cfg.MaxTextLength {
		return errors.New(errors.ErrCodeTextTooLong, "prescription text exceeds maximum length")
	}
	if err := req.Patient.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidPatient, "invalid patient information")
	}
	return nil
}

func (s *service) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StageTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.StageTimeout)
	}
	return context.WithCancel(ctx)
}

func flatten[T any](groups [][]T) []T {
	var out []T
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
