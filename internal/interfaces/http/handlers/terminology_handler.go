package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/terminology"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// TerminologyHandler serves the RxNorm lookup and interaction endpoints.
type TerminologyHandler struct {
	mapper  terminology.Mapper
	checker terminology.InteractionChecker
	client  terminology.Client
	logger  logging.Logger
}

// NewTerminologyHandler builds the handler.
func NewTerminologyHandler(mapper terminology.Mapper, checker terminology.InteractionChecker, client terminology.Client, logger logging.Logger) *TerminologyHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TerminologyHandler{
		mapper:  mapper,
		checker: checker,
		client:  client,
		logger:  logger.Named("handlers.terminology"),
	}
}

// LookupResponse is the body of a successful lookup.
type LookupResponse struct {
	Query    string             `json:"query"`
	Mappings []rx.RxNormMapping `json:"mappings"`
}

// Lookup handles GET /api/v1/rxnorm/lookup?name=...&max_results=N.
func (h *TerminologyHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeAppError(w, errors.InvalidParam("name query parameter is required"))
		return
	}
	maxResults := queryInt(r, "max_results", 0)

	mappings := h.mapper.Search(r.Context(), name, maxResults)
	writeJSON(w, http.StatusOK, LookupResponse{Query: name, Mappings: mappings})
}

// RxCUIResponse is the body of a successful identifier resolution.
type RxCUIResponse struct {
	Query  string   `json:"query"`
	RxCUIs []string `json:"rxcuis"`
}

// ResolveRxCUI handles GET /api/v1/rxnorm/rxcui?name=...
func (h *TerminologyHandler) ResolveRxCUI(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeAppError(w, errors.InvalidParam("name query parameter is required"))
		return
	}

	rxcuis, err := h.client.Resolve(r.Context(), name)
	if err != nil {
		h.logger.Warn("rxcui resolution failed", logging.String("name", name), logging.Err(err))
		writeAppError(w, err)
		return
	}
	if len(rxcuis) == 0 {
		writeAppError(w, errors.NotFound("no RxNorm concept matches the given name"))
		return
	}

	writeJSON(w, http.StatusOK, RxCUIResponse{Query: name, RxCUIs: rxcuis})
}

// InteractionsRequest is the body of an interaction check.
type InteractionsRequest struct {
	RxCUIs []string `json:"rxcuis"`
}

// InteractionsResponse is the body of a successful interaction check.
type InteractionsResponse struct {
	Interactions []rx.DrugInteraction `json:"interactions"`
}

// CheckInteractions handles POST /api/v1/interactions.
func (h *TerminologyHandler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	var req InteractionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	if len(req.RxCUIs) < 2 {
		writeAppError(w, errors.InvalidParam("at least two rxcuis are required"))
		return
	}

	interactions := h.checker.Check(r.Context(), req.RxCUIs)
	writeJSON(w, http.StatusOK, InteractionsResponse{Interactions: interactions})
}
