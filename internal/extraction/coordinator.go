package extraction

import (
	"context"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// Source identifies which extraction path produced a result.  The two paths
// use incomparable confidence scales, so a result is always wholly one or the
// other, never a merge.
type Source string

const (
	SourceModel   Source = "model"
	SourcePattern Source = "pattern"
	SourceNone    Source = "none"
)

// Result is the tagged output of a coordinated extraction run.
type Result struct {
	Source      Source
	Medications []rx.ExtractedMedication
}

// ModelExtractor is the model-based extraction path.  Implementations wrap an
// external entity tagger and may be unavailable.
type ModelExtractor interface {
	// Extract converts tagged spans into candidate medications.  An error
	// means the model path is unavailable for this call.
	Extract(ctx context.Context, text string) ([]rx.ExtractedMedication, error)

	// Available reports whether the model path can be attempted at all.
	Available() bool
}

// Coordinator orchestrates the model path and the pattern fallback.
type Coordinator interface {
	// Extract normalizes the text, attempts the model path, and falls back
	// to patterns when the model is unavailable or yields nothing.  The
	// returned Result is never an error; an empty Result carries
	// SourceNone.
	Extract(ctx context.Context, text string) Result
}

type coordinator struct {
	normalizer TextNormalizer
	model      ModelExtractor
	pattern    PatternExtractor
	logger     logging.Logger
}

var _ Coordinator = (*coordinator)(nil)

// NewCoordinator wires the extraction paths together.  model may be nil when
// no tagger is configured; the coordinator then always uses patterns.
func NewCoordinator(normalizer TextNormalizer, model ModelExtractor, pattern PatternExtractor, logger logging.Logger) Coordinator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &coordinator{
		normalizer: normalizer,
		model:      model,
		pattern:    pattern,
		logger:     logger.Named("extraction.coordinator"),
	}
}

func (c *coordinator) Extract(ctx context.Context, text string) Result {
	normalized := c.normalizer.Normalize(text)
	if normalized == "" {
		return Result{Source: SourceNone}
	}

	if c.model != nil && c.model.Available() {
		meds, err := c.model.Extract(ctx, normalized)
		switch {
		case err != nil:
			// Model failure is silent: downgrade to patterns.
			c.logger.Warn("model extraction unavailable, falling back to patterns", logging.Err(err))
		case len(meds) > 0:
			return Result{Source: SourceModel, Medications: dedupe(meds)}
		default:
			c.logger.Debug("model extraction yielded no medications, falling back to patterns")
		}
	}

	meds := c.pattern.Extract(normalized)
	if len(meds) == 0 {
		return Result{Source: SourceNone}
	}
	return Result{Source: SourcePattern, Medications: meds}
}

// dedupe removes case-insensitive drug-name duplicates, keeping first
// occurrence.  The pattern extractor already deduplicates; the model path
// may not.
func dedupe(meds []rx.ExtractedMedication) []rx.ExtractedMedication {
	seen := make(map[string]bool, len(meds))
	out := meds[:0]
	for _, m := range meds {
		key := strings.ToLower(m.DrugName)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
