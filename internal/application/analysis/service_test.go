package analysis

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/extraction"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockCoordinator struct {
	extractFn func(ctx context.Context, text string) extraction.Result
}

func (m *mockCoordinator) Extract(ctx context.Context, text string) extraction.Result {
	if m.extractFn != nil {
		return m.extractFn(ctx, text)
	}
	return extraction.Result{Source: extraction.SourceNone}
}

type mockMapper struct {
	mu       sync.Mutex
	searched []string
	searchFn func(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping
}

func (m *mockMapper) Search(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping {
	m.mu.Lock()
	m.searched = append(m.searched, drugName)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, drugName, maxResults)
	}
	return nil
}

type mockChecker struct {
	checkFn func(ctx context.Context, rxcuis []string) []rx.DrugInteraction
}

func (m *mockChecker) Check(ctx context.Context, rxcuis []string) []rx.DrugInteraction {
	if m.checkFn != nil {
		return m.checkFn(ctx, rxcuis)
	}
	return nil
}

type mockEvaluator struct {
	evaluateFn func(med rx.ExtractedMedication, patient rx.Patient) []rx.SafetyAlert
}

func (m *mockEvaluator) Evaluate(med rx.ExtractedMedication, patient rx.Patient) []rx.SafetyAlert {
	if m.evaluateFn != nil {
		return m.evaluateFn(med, patient)
	}
	return nil
}

type mockAdvisor struct {
	mu        sync.Mutex
	calls     int
	seen      rx.Patient
	suggestFn func(med rx.ExtractedMedication, patient rx.Patient) []rx.AlternativeMedication
}

func (m *mockAdvisor) Suggest(med rx.ExtractedMedication, patient rx.Patient) []rx.AlternativeMedication {
	m.mu.Lock()
	m.calls++
	m.seen = patient
	m.mu.Unlock()
	if m.suggestFn != nil {
		return m.suggestFn(med, patient)
	}
	return nil
}

func (m *mockAdvisor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockAdvisor) seenPatient() rx.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen
}

type serviceDeps struct {
	coordinator *mockCoordinator
	mapper      *mockMapper
	checker     *mockChecker
	evaluator   *mockEvaluator
	advisor     *mockAdvisor
}

func newTestService(deps serviceDeps) Service {
	if deps.coordinator == nil {
		deps.coordinator = &mockCoordinator{}
	}
	if deps.mapper == nil {
		deps.mapper = &mockMapper{}
	}
	if deps.checker == nil {
		deps.checker = &mockChecker{}
	}
	if deps.evaluator == nil {
		deps.evaluator = &mockEvaluator{}
	}
	if deps.advisor == nil {
		deps.advisor = &mockAdvisor{}
	}
	cfg := config.AnalysisConfig{MaxTextLength: 10000}
	return NewService(deps.coordinator, deps.mapper, deps.checker,
		deps.evaluator, deps.advisor, cfg, nil, nil)
}

func twoMedsCoordinator() *mockCoordinator {
	return &mockCoordinator{
		extractFn: func(context.Context, string) extraction.Result {
			return extraction.Result{
				Source: extraction.SourcePattern,
				Medications: []rx.ExtractedMedication{
					{DrugName: "Aspirin", Strength: "100mg", Route: "oral", Confidence: 0.8},
					{DrugName: "Warfarin", Strength: "5mg", Route: "oral", Confidence: 0.6},
				},
			}
		},
	}
}

func validRequest() rx.AnalysisRequest {
	return rx.AnalysisRequest{
		Text:    "Aspirin 100mg and Warfarin 5mg",
		Patient: rx.Patient{Age: 45, WeightKg: 70},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyzeHappyPath(t *testing.T) {
	mapper := &mockMapper{
		searchFn: func(_ context.Context, drugName string, _ int) []rx.RxNormMapping {
			switch drugName {
			case "Aspirin":
				return []rx.RxNormMapping{{RxCUI: "1191", Name: "Aspirin", Confidence: 0.9}}
			case "Warfarin":
				return []rx.RxNormMapping{{RxCUI: "11289", Name: "Warfarin", Confidence: 0.9}}
			}
			return nil
		},
	}
	checker := &mockChecker{
		checkFn: func(_ context.Context, rxcuis []string) []rx.DrugInteraction {
			sorted := append([]string(nil), rxcuis...)
			sort.Strings(sorted)
			require.Equal(t, []string{"1191", "11289"}, sorted)
			return []rx.DrugInteraction{{Drug1: "Aspirin", Drug2: "Warfarin", Severity: rx.SeverityHigh}}
		},
	}
	evaluator := &mockEvaluator{
		evaluateFn: func(med rx.ExtractedMedication, _ rx.Patient) []rx.SafetyAlert {
			if med.DrugName == "Warfarin" {
				return []rx.SafetyAlert{{Severity: rx.SeverityHigh, DrugName: "Warfarin"}}
			}
			return nil
		},
	}

	svc := newTestService(serviceDeps{
		coordinator: twoMedsCoordinator(),
		mapper:      mapper,
		checker:     checker,
		evaluator:   evaluator,
	})

	result, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	require.Len(t, result.Medications, 2)
	require.Len(t, result.Mappings, 2)
	require.Len(t, result.Alerts, 1)
	require.Len(t, result.Interactions, 1)
	assert.Empty(t, result.Alternatives)
	assert.InDelta(t, 0.7, result.AnalysisConfidence, 1e-9)
	assert.GreaterOrEqual(t, result.ProcessingTimeMillis, int64(0))
}

func TestAnalyzeMappingsKeepMedicationOrder(t *testing.T) {
	mapper := &mockMapper{
		searchFn: func(_ context.Context, drugName string, _ int) []rx.RxNormMapping {
			return []rx.RxNormMapping{{RxCUI: drugName + "-id", Name: drugName, Confidence: 0.9}}
		},
	}

	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator(), mapper: mapper})

	result, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)

	// Fan-out runs concurrently but results come back in medication order,
	// re-associated by source drug.
	require.Len(t, result.Mappings, 2)
	assert.Equal(t, "Aspirin", result.Mappings[0].SourceDrug)
	assert.Equal(t, "Warfarin", result.Mappings[1].SourceDrug)
}

func TestAnalyzeNoMedicationsEscalates(t *testing.T) {
	svc := newTestService(serviceDeps{})

	_, err := svc.Analyze(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoMedicationsFound))
}

func TestAnalyzeEmptyTextRejected(t *testing.T) {
	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator()})

	req := validRequest()
	req.Text = "   "

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestAnalyzeTextTooLong(t *testing.T) {
	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator()})

	req := validRequest()
	req.Text = strings.Repeat("a", 10001)

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextTooLong))
}

func TestAnalyzeInvalidPatient(t *testing.T) {
	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator()})

	req := validRequest()
	req.Patient.Age = 200

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPatient))
}

func TestAnalyzePatientNormalizedBeforeRules(t *testing.T) {
	advisor := &mockAdvisor{}

	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator(), advisor: advisor})

	req := validRequest()
	req.Patient.Allergies = []string{"  Penicillin ", ""}
	req.IncludeAlternatives = true

	_, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"penicillin"}, advisor.seenPatient().Allergies)
}

func TestAnalyzeAlternativesOnlyWhenRequested(t *testing.T) {
	advisor := &mockAdvisor{
		suggestFn: func(rx.ExtractedMedication, rx.Patient) []rx.AlternativeMedication {
			return []rx.AlternativeMedication{{DrugName: "acetaminophen"}}
		},
	}

	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator(), advisor: advisor})

	result, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, advisor.callCount())
	assert.Empty(t, result.Alternatives)

	req := validRequest()
	req.IncludeAlternatives = true
	result, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, advisor.callCount())
	assert.Len(t, result.Alternatives, 2)
}

func TestAnalyzeInteractionsUseFirstMappingPerMedication(t *testing.T) {
	mapper := &mockMapper{
		searchFn: func(_ context.Context, drugName string, _ int) []rx.RxNormMapping {
			if drugName == "Aspirin" {
				return []rx.RxNormMapping{
					{RxCUI: "1191", Confidence: 0.9},
					{RxCUI: "9999", Confidence: 0.7},
				}
			}
			return nil // Warfarin unmapped
		},
	}
	var got []string
	checker := &mockChecker{
		checkFn: func(_ context.Context, rxcuis []string) []rx.DrugInteraction {
			got = rxcuis
			return nil
		},
	}

	svc := newTestService(serviceDeps{
		coordinator: twoMedsCoordinator(),
		mapper:      mapper,
		checker:     checker,
	})

	_, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"1191"}, got, "only the best mapping per medication is used")
}

func TestAnalyzeDownstreamFailuresDegrade(t *testing.T) {
	// Mapper and checker returning nothing must not fail the analysis.
	svc := newTestService(serviceDeps{coordinator: twoMedsCoordinator()})

	result, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, result.Medications, 2)
	assert.Empty(t, result.Mappings)
	assert.Empty(t, result.Interactions)
}
