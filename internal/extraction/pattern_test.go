package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestPatternExtractor() PatternExtractor {
	return NewPatternExtractor(logging.NewNopLogger())
}

func TestExtract_FullPattern(t *testing.T) {
	n := NewTextNormalizer()
	p := newTestPatternExtractor()

	meds := p.Extract(n.Normalize("Aspirin 100mg OD for 7 days"))
	require.Len(t, meds, 1)

	m := meds[0]
	assert.Equal(t, "Aspirin", m.DrugName)
	assert.Equal(t, "100mg", m.Strength)
	assert.Equal(t, "once daily", m.Frequency)
	assert.Equal(t, "7 days", m.Duration)
	assert.Equal(t, "oral", m.Route)
	// 0.6 base + 0.2 strength + 0.1 frequency + 0.1 duration, capped.
	assert.InDelta(t, 0.95, m.Confidence, 1e-9)
}

func TestExtract_StrengthOnly(t *testing.T) {
	p := newTestPatternExtractor()

	meds := p.Extract("Metformin 500mg")
	require.Len(t, meds, 1)
	assert.Equal(t, "Metformin", meds[0].DrugName)
	assert.Equal(t, "500mg", meds[0].Strength)
	assert.Empty(t, meds[0].Frequency)
	assert.InDelta(t, 0.8, meds[0].Confidence, 1e-9)
}

func TestExtract_MultipleMedications(t *testing.T) {
	p := newTestPatternExtractor()

	meds := p.Extract("Aspirin 100mg twice daily and Metformin 500mg")
	require.Len(t, meds, 2)
	assert.Equal(t, "Aspirin", meds[0].DrugName)
	assert.Equal(t, "twice daily", meds[0].Frequency)
	assert.InDelta(t, 0.9, meds[0].Confidence, 1e-9)
	assert.Equal(t, "Metformin", meds[1].DrugName)
	assert.InDelta(t, 0.8, meds[1].Confidence, 1e-9)
}

func TestExtract_DeduplicatesByName(t *testing.T) {
	p := newTestPatternExtractor()

	meds := p.Extract("Aspirin 100mg twice daily, then Aspirin as needed")
	require.Len(t, meds, 1)
	// The most specific pattern's match wins.
	assert.Equal(t, "100mg", meds[0].Strength)
}

func TestExtract_EmptyInput(t *testing.T) {
	p := newTestPatternExtractor()
	assert.Empty(t, p.Extract(""))
	assert.Empty(t, p.Extract("   "))
}

func TestExtract_RejectsNonDrugWords(t *testing.T) {
	p := newTestPatternExtractor()
	// "Take" and "Tablet" are clinical stopwords, not medications.
	assert.Empty(t, p.Extract("Take Two Tablets"))
}

func TestExtract_LexiconFallback(t *testing.T) {
	p := newTestPatternExtractor()

	// Lowercase names never match the capitalized surface patterns; the
	// lexicon substring scan picks them up at reduced confidence.
	meds := p.Extract("patient should continue aspirin and warfarin")
	require.Len(t, meds, 2)
	for _, m := range meds {
		assert.InDelta(t, 0.5, m.Confidence, 1e-9)
		assert.Equal(t, "oral", m.Route)
		assert.Empty(t, m.Strength)
	}
	assert.Equal(t, "Aspirin", meds[0].DrugName)
	assert.Equal(t, "Warfarin", meds[1].DrugName)
}

func TestExtract_RouteDetection(t *testing.T) {
	n := NewTextNormalizer()
	p := newTestPatternExtractor()

	meds := p.Extract(n.Normalize("Morphine 10mg IV"))
	require.Len(t, meds, 1)
	assert.Equal(t, "intravenous", meds[0].Route)
}

func TestExtract_ConfidenceNeverExceedsCap(t *testing.T) {
	n := NewTextNormalizer()
	p := newTestPatternExtractor()

	meds := p.Extract(n.Normalize("Warfarin 5mg OD for 30 days"))
	require.Len(t, meds, 1)
	assert.LessOrEqual(t, meds[0].Confidence, 0.95)
}

func TestIsPlausibleDrugName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Aspirin", true},         // lexicon
		{"Sertraline", true},      // -ine suffix
		{"Metoprolol", true},      // lexicon and met- prefix
		{"Pantoprazole", true},    // panto- prefix
		{"Tablet", false},         // stopword
		{"Aspirin Tablet", false}, // stopword wins over lexicon
		{"Xyzzy", false},          // no evidence
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isPlausibleDrugName(tc.name), "candidate %q", tc.name)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Aspirin", titleCase("aspirin"))
	assert.Equal(t, "Aspirin", titleCase("ASPIRIN"))
	assert.Equal(t, "Co Codamol", titleCase("co codamol"))
}
