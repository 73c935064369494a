package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RxMed-Intelligence/internal/terminology"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

type mockMapper struct {
	searchFn func(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping
}

func (m *mockMapper) Search(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping {
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

type mockClient struct {
	resolveFn func(ctx context.Context, drugName string) ([]string, error)
}

func (m *mockClient) Resolve(ctx context.Context, drugName string) ([]string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, drugName)
	}
	return nil, nil
}

func (m *mockClient) Describe(ctx context.Context, rxcui string) *terminology.ConceptInfo {
	return nil
}

func (m *mockClient) SearchDrugs(ctx context.Context, drugName string, limit int) ([]terminology.Concept, error) {
	return nil, nil
}

func (m *mockClient) Interactions(ctx context.Context, rxcuis []string) ([]terminology.InteractionPair, error) {
	return nil, nil
}

func newTestTerminologyHandler(mapper *mockMapper, checker *mockChecker, client *mockClient) *TerminologyHandler {
	if mapper == nil {
		mapper = &mockMapper{}
	}
	if checker == nil {
		checker = &mockChecker{}
	}
	if client == nil {
		client = &mockClient{}
	}
	return NewTerminologyHandler(mapper, checker, client, nil)
}

func TestLookupSuccess(t *testing.T) {
	mapper := &mockMapper{
		searchFn: func(_ context.Context, drugName string, maxResults int) []rx.RxNormMapping {
			assert.Equal(t, "Aspirin", drugName)
			assert.Equal(t, 3, maxResults)
			return []rx.RxNormMapping{{RxCUI: "1191", Name: "Aspirin", Confidence: 0.9}}
		},
	}
	h := newTestTerminologyHandler(mapper, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rxnorm/lookup?name=Aspirin&max_results=3", nil)
	rec := httptest.NewRecorder()

	h.Lookup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Aspirin", resp.Query)
	require.Len(t, resp.Mappings, 1)
	assert.Equal(t, "1191", resp.Mappings[0].RxCUI)
}

func TestLookupMissingName(t *testing.T) {
	h := newTestTerminologyHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rxnorm/lookup", nil)
	rec := httptest.NewRecorder()

	h.Lookup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveRxCUISuccess(t *testing.T) {
	client := &mockClient{
		resolveFn: func(_ context.Context, drugName string) ([]string, error) {
			return []string{"1191"}, nil
		},
	}
	h := newTestTerminologyHandler(nil, nil, client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rxnorm/rxcui?name=Aspirin", nil)
	rec := httptest.NewRecorder()

	h.ResolveRxCUI(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RxCUIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1191"}, resp.RxCUIs)
}

func TestResolveRxCUINotFound(t *testing.T) {
	h := newTestTerminologyHandler(nil, nil, &mockClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rxnorm/rxcui?name=Unknown", nil)
	rec := httptest.NewRecorder()

	h.ResolveRxCUI(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckInteractionsSuccess(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, rxcuis []string) []rx.DrugInteraction {
			assert.Equal(t, []string{"1191", "11289"}, rxcuis)
			return []rx.DrugInteraction{{Drug1: "Aspirin", Drug2: "Warfarin", Severity: rx.SeverityHigh}}
		},
	}
	h := newTestTerminologyHandler(nil, checker, nil)

	body := `{"rxcuis":["1191","11289"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CheckInteractions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp InteractionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Interactions, 1)
	assert.Equal(t, rx.SeverityHigh, resp.Interactions[0].Severity)
}

func TestCheckInteractionsTooFewIdentifiers(t *testing.T) {
	h := newTestTerminologyHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", strings.NewReader(`{"rxcuis":["1191"]}`))
	rec := httptest.NewRecorder()

	h.CheckInteractions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
