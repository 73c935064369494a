package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/RxMed-Intelligence/internal/application/analysis"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// AnalysisHandler serves the prescription analysis endpoint.
type AnalysisHandler struct {
	service analysis.Service
	logger  logging.Logger
}

// NewAnalysisHandler builds the handler.
func NewAnalysisHandler(service analysis.Service, logger logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{
		service: service,
		logger:  logger.Named("handlers.analysis"),
	}
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req rx.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Warn("analysis failed", logging.Err(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
