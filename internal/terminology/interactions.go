package terminology

import (
	"context"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

const (
	interactionSource         = "RxNorm"
	interactionRecommendation = "Consult healthcare provider before combining these medications"
	noDescription             = "No description available"
)

// severityKeywords are scanned in priority order against the interaction
// description; the first matching tier wins.
var severityKeywords = []struct {
	words    []string
	severity rx.Severity
}{
	{[]string{"severe", "serious", "life-threatening", "contraindicated"}, rx.SeverityHigh},
	{[]string{"moderate"}, rx.SeverityMedium},
	{[]string{"mild", "minor", "minimal"}, rx.SeverityLow},
}

// InteractionChecker finds pairwise drug interactions for a set of resolved
// identifiers.
type InteractionChecker interface {
	// Check returns the interactions among the given identifiers.  Fewer
	// than two identifiers yields an empty result with no network call.
	// External failures also yield empty, never an error.
	Check(ctx context.Context, rxcuis []string) []rx.DrugInteraction
}

type interactionChecker struct {
	client  Client
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ InteractionChecker = (*interactionChecker)(nil)

// NewInteractionChecker builds an InteractionChecker.  metrics may be nil.
func NewInteractionChecker(client Client, logger logging.Logger, metrics *prometheus.AppMetrics) InteractionChecker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &interactionChecker{
		client:  client,
		logger:  logger.Named("terminology.interactions"),
		metrics: metrics,
	}
}

func (c *interactionChecker) Check(ctx context.Context, rxcuis []string) []rx.DrugInteraction {
	if len(rxcuis) < 2 {
		return nil
	}

	pairs, err := c.client.Interactions(ctx, rxcuis)
	if err != nil {
		c.logger.Warn("interaction lookup failed", logging.Err(err))
		if c.metrics != nil {
			c.metrics.InteractionChecksTotal.WithLabelValues("failure").Inc()
		}
		return nil
	}
	if c.metrics != nil {
		c.metrics.InteractionChecksTotal.WithLabelValues("success").Inc()
	}

	var interactions []rx.DrugInteraction
	for _, pair := range pairs {
		description := pair.Description
		if description == "" {
			description = noDescription
		}
		severity := classifySeverity(description)
		interactions = append(interactions, rx.DrugInteraction{
			Drug1:          pair.Drug1,
			Drug2:          pair.Drug2,
			Severity:       severity,
			Description:    description,
			Recommendation: interactionRecommendation,
			Source:         interactionSource,
		})
		if c.metrics != nil {
			c.metrics.InteractionsFound.WithLabelValues(string(severity)).Inc()
		}
	}
	return interactions
}

// classifySeverity scans the description for severity keywords in priority
// order; unmatched descriptions default to medium.
func classifySeverity(description string) rx.Severity {
	lower := strings.ToLower(description)
	for _, tier := range severityKeywords {
		for _, word := range tier.words {
			if strings.Contains(lower, word) {
				return tier.severity
			}
		}
	}
	return rx.SeverityMedium
}
