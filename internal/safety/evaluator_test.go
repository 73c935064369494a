package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

func adultPatient() rx.Patient {
	return rx.Patient{Age: 45, WeightKg: 70}
}

func TestEvaluatorNoAlertsForHealthyAdult(t *testing.T) {
	e := NewEvaluator(nil, nil)

	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Aspirin"}, adultPatient())

	assert.Empty(t, alerts)
}

func TestEvaluatorPediatricAlert(t *testing.T) {
	e := NewEvaluator(nil, nil)

	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Aspirin"}, rx.Patient{Age: 10, WeightKg: 70})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, rx.SeverityMedium, alert.Severity)
	assert.Equal(t, "Patient is under 18 years old (10 years)", alert.Message)
	assert.Equal(t, "Verify age-appropriate dosing for this medication", alert.Recommendation)
	assert.Equal(t, "Pediatric dosing guidelines", alert.Reference)
	assert.Equal(t, "Aspirin", alert.DrugName)
}

func TestEvaluatorLowWeightAlert(t *testing.T) {
	e := NewEvaluator(nil, nil)

	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Metformin"}, rx.Patient{Age: 40, WeightKg: 25})

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, rx.SeverityMedium, alert.Severity)
	assert.Equal(t, "Patient weight is low (25 kg)", alert.Message)
	assert.Equal(t, "Consider weight-based dosing adjustments", alert.Recommendation)
	assert.Equal(t, "Weight-based dosing guidelines", alert.Reference)
}

func TestEvaluatorHighRiskAlert(t *testing.T) {
	e := NewEvaluator(nil, nil)

	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Warfarin"}, adultPatient())

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, rx.SeverityHigh, alert.Severity)
	assert.Equal(t, "Warfarin is a high-risk medication", alert.Message)
	assert.Equal(t, "Monitor closely and verify dosing", alert.Recommendation)
	assert.Equal(t, "High-risk medication protocols", alert.Reference)
}

func TestEvaluatorRulesAreIndependent(t *testing.T) {
	e := NewEvaluator(nil, nil)

	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Digoxin"}, rx.Patient{Age: 8, WeightKg: 20})

	require.Len(t, alerts, 3)
	assert.Equal(t, "Pediatric dosing guidelines", alerts[0].Reference)
	assert.Equal(t, "Weight-based dosing guidelines", alerts[1].Reference)
	assert.Equal(t, "High-risk medication protocols", alerts[2].Reference)
}

func TestEvaluatorBoundaryValues(t *testing.T) {
	e := NewEvaluator(nil, nil)

	// Exactly 18 years and exactly 30 kg are not flagged.
	alerts := e.Evaluate(rx.ExtractedMedication{DrugName: "Aspirin"}, rx.Patient{Age: 18, WeightKg: 30})

	assert.Empty(t, alerts)
}

func TestIsHighRisk(t *testing.T) {
	tests := []struct {
		name string
		drug string
		want bool
	}{
		{"exact match", "warfarin", true},
		{"case insensitive", "WARFARIN", true},
		{"substring match", "Warfarin Sodium", true},
		{"digoxin", "Digoxin", true},
		{"insulin", "Insulin Glargine", true},
		{"lithium", "Lithium", true},
		{"phenytoin", "Phenytoin", true},
		{"not high risk", "Aspirin", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHighRisk(tt.drug))
		})
	}
}
