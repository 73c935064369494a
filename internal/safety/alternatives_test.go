package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

func TestAdvisorSuggestsForMatchingAllergy(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	med := rx.ExtractedMedication{DrugName: "Aspirin", Strength: "100mg", Route: "oral"}
	patient := rx.Patient{Age: 45, WeightKg: 70, Allergies: []string{"aspirin"}}

	alternatives := a.Suggest(med, patient)

	require.Len(t, alternatives, 3)
	assert.Equal(t, "acetaminophen", alternatives[0].DrugName)
	assert.Equal(t, "ibuprofen", alternatives[1].DrugName)
	assert.Equal(t, "naproxen", alternatives[2].DrugName)
	for _, alt := range alternatives {
		assert.Equal(t, "Alternative to Aspirin due to aspirin allergy", alt.Reason)
		assert.Equal(t, "100mg", alt.Strength)
		assert.Equal(t, "oral", alt.Route)
		assert.Equal(t, "Consult healthcare provider for appropriate dosing", alt.Notes)
	}
}

func TestAdvisorSuggestsRegardlessOfDrugName(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	// The allergy drives the suggestion; the medication name only appears
	// in the reason string.
	alternatives := a.Suggest(
		rx.ExtractedMedication{DrugName: "Metformin"},
		rx.Patient{Allergies: []string{"penicillin"}},
	)

	require.Len(t, alternatives, 3)
	assert.Equal(t, "azithromycin", alternatives[0].DrugName)
	assert.Equal(t, "clindamycin", alternatives[1].DrugName)
	assert.Equal(t, "doxycycline", alternatives[2].DrugName)
	assert.Equal(t, "Alternative to Metformin due to penicillin allergy", alternatives[0].Reason)
}

func TestAdvisorSkipsUnknownAllergy(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	// "codeine phosphate" is not a table key; only exact allergen classes
	// have entries.
	alternatives := a.Suggest(
		rx.ExtractedMedication{DrugName: "Codeine"},
		rx.Patient{Allergies: []string{"codeine phosphate", "latex"}},
	)

	assert.Empty(t, alternatives)
}

func TestAdvisorCaseInsensitive(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	alternatives := a.Suggest(
		rx.ExtractedMedication{DrugName: "CODEINE"},
		rx.Patient{Allergies: []string{"Codeine"}},
	)

	require.Len(t, alternatives, 3)
	assert.Equal(t, "tramadol", alternatives[0].DrugName)
	assert.Equal(t, "Alternative to CODEINE due to codeine allergy", alternatives[0].Reason)
}

func TestAdvisorMultipleMatchingAllergies(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	// Blank allergies are skipped; each known allergy contributes its full
	// substitute list in declaration order.
	alternatives := a.Suggest(
		rx.ExtractedMedication{DrugName: "Aspirin"},
		rx.Patient{Allergies: []string{"", "aspirin", "sulfa"}},
	)

	require.Len(t, alternatives, 6)
	assert.Equal(t, "acetaminophen", alternatives[0].DrugName)
	assert.Equal(t, "amoxicillin", alternatives[3].DrugName)
}

func TestAdvisorNoAllergies(t *testing.T) {
	a := NewAlternativeAdvisor(nil)

	alternatives := a.Suggest(rx.ExtractedMedication{DrugName: "Warfarin"}, rx.Patient{})

	assert.Empty(t, alternatives)
}
