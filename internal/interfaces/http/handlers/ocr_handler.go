package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/ocr"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// OCRHandler serves the image text extraction endpoint.
type OCRHandler struct {
	provider ocr.TextProvider
	logger   logging.Logger
}

// NewOCRHandler builds the handler.
func NewOCRHandler(provider ocr.TextProvider, logger logging.Logger) *OCRHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OCRHandler{
		provider: provider,
		logger:   logger.Named("handlers.ocr"),
	}
}

// ExtractRequest is the body of an OCR extraction: base64-encoded image bytes.
type ExtractRequest struct {
	Image string `json:"image"`
}

// Extract handles POST /api/v1/ocr/extract.
func (h *OCRHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeAppError(w, errors.New(errors.ErrCodeOCRInvalidImage, "image must be base64-encoded"))
		return
	}

	result, err := h.provider.ExtractText(r.Context(), image)
	if err != nil {
		h.logger.Warn("ocr extraction failed", logging.Err(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
