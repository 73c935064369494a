package medner

import (
	"context"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/extraction"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// Entity labels grouped into medication fields.  A drug label starts a new
// record; the attribute labels attach to the record currently open.
var (
	drugLabels      = map[string]bool{"DRUG": true, "MEDICATION": true, "CHEMICAL": true}
	strengthLabels  = map[string]bool{"DOSAGE": true, "STRENGTH": true}
	frequencyLabels = map[string]bool{"FREQUENCY": true}
	durationLabels  = map[string]bool{"DURATION": true}
)

const (
	modelDefaultRoute      = "oral"
	modelConfidenceCeiling = 1.0
)

// modelExtractor adapts a Tagger into the coordinator's model path.
type modelExtractor struct {
	tagger   Tagger
	minScore float64
	logger   logging.Logger
}

var _ extraction.ModelExtractor = (*modelExtractor)(nil)

// NewModelExtractor builds the model extraction path on top of a Tagger.
func NewModelExtractor(tagger Tagger, cfg config.TaggerConfig, logger logging.Logger) extraction.ModelExtractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &modelExtractor{
		tagger:   tagger,
		minScore: cfg.MinScore,
		logger:   logger.Named("medner.extractor"),
	}
}

func (e *modelExtractor) Available() bool {
	return e.tagger != nil && e.tagger.Available()
}

func (e *modelExtractor) Extract(ctx context.Context, text string) ([]rx.ExtractedMedication, error) {
	entities, err := e.tagger.Tag(ctx, text)
	if err != nil {
		return nil, err
	}

	var meds []rx.ExtractedMedication
	var current *rx.ExtractedMedication

	for _, entity := range entities {
		label := strings.ToUpper(entity.EntityGroup)
		word := strings.TrimSpace(entity.Word)
		if word == "" {
			continue
		}

		switch {
		case drugLabels[label]:
			if entity.Score < e.minScore {
				continue
			}
			if current != nil {
				meds = append(meds, *current)
			}
			conf := entity.Score
			if conf > modelConfidenceCeiling {
				conf = modelConfidenceCeiling
			}
			current = &rx.ExtractedMedication{
				DrugName:   word,
				Route:      modelDefaultRoute,
				Confidence: conf,
			}
		case current == nil:
			// Attribute spans before the first drug span have nothing
			// to attach to.
		case strengthLabels[label]:
			current.Strength = word
		case frequencyLabels[label]:
			current.Frequency = word
		case durationLabels[label]:
			current.Duration = word
		}
	}
	if current != nil {
		meds = append(meds, *current)
	}

	e.logger.Debug("model extraction complete",
		logging.Int("entities", len(entities)),
		logging.Int("medications", len(meds)))
	return meds, nil
}
