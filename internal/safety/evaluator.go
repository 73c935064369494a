// Package safety evaluates extracted medications against patient attributes:
// deterministic dosing rules, allergy-driven alternative suggestions.
package safety

import (
	"fmt"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// Rule thresholds and the fixed high-risk medication list.
const (
	pediatricAgeThreshold = 18
	lowWeightThresholdKg  = 30.0
)

var highRiskMedications = []string{"warfarin", "digoxin", "insulin", "lithium", "phenytoin"}

// Alert reference strings.
const (
	pediatricReference = "Pediatric dosing guidelines"
	weightReference    = "Weight-based dosing guidelines"
	highRiskReference  = "High-risk medication protocols"
)

// Evaluator applies the dosing safety rules.  All rules are independent:
// every matching rule emits its alert, with no short-circuiting.
type Evaluator interface {
	// Evaluate returns the alerts for one medication against the patient.
	// Never fails; no rules matching yields an empty list.
	Evaluate(med rx.ExtractedMedication, patient rx.Patient) []rx.SafetyAlert
}

type evaluator struct {
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ Evaluator = (*evaluator)(nil)

// NewEvaluator builds the rule evaluator.  metrics may be nil.
func NewEvaluator(logger logging.Logger, metrics *prometheus.AppMetrics) Evaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &evaluator{
		logger:  logger.Named("safety.evaluator"),
		metrics: metrics,
	}
}

func (e *evaluator) Evaluate(med rx.ExtractedMedication, patient rx.Patient) []rx.SafetyAlert {
	var alerts []rx.SafetyAlert

	if patient.Age < pediatricAgeThreshold {
		alerts = append(alerts, e.record("pediatric", rx.SafetyAlert{
			Severity:       rx.SeverityMedium,
			Message:        fmt.Sprintf("Patient is under 18 years old (%d years)", patient.Age),
			Recommendation: "Verify age-appropriate dosing for this medication",
			Reference:      pediatricReference,
			DrugName:       med.DrugName,
		}))
	}

	if patient.WeightKg < lowWeightThresholdKg {
		alerts = append(alerts, e.record("low_weight", rx.SafetyAlert{
			Severity:       rx.SeverityMedium,
			Message:        fmt.Sprintf("Patient weight is low (%g kg)", patient.WeightKg),
			Recommendation: "Consider weight-based dosing adjustments",
			Reference:      weightReference,
			DrugName:       med.DrugName,
		}))
	}

	if isHighRisk(med.DrugName) {
		alerts = append(alerts, e.record("high_risk", rx.SafetyAlert{
			Severity:       rx.SeverityHigh,
			Message:        fmt.Sprintf("%s is a high-risk medication", med.DrugName),
			Recommendation: "Monitor closely and verify dosing",
			Reference:      highRiskReference,
			DrugName:       med.DrugName,
		}))
	}

	return alerts
}

func (e *evaluator) record(rule string, alert rx.SafetyAlert) rx.SafetyAlert {
	if e.metrics != nil {
		prometheus.RecordSafetyAlert(e.metrics, rule, string(alert.Severity))
	}
	return alert
}

func isHighRisk(drugName string) bool {
	lower := strings.ToLower(drugName)
	for _, med := range highRiskMedications {
		if strings.Contains(lower, med) {
			return true
		}
	}
	return false
}
