// Package ocr extracts prescription text from images through a chain of
// external OCR backends with a fixed fallback order.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// Result is the output of one extraction attempt.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
}

// Provider is one OCR backend.
type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Available reports whether the backend can serve requests.
	Available() bool

	// Extract runs OCR on the image and returns raw text with a
	// confidence in [0, 1].
	Extract(ctx context.Context, image []byte) (text string, confidence float64, err error)
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP provider
// ─────────────────────────────────────────────────────────────────────────────

type httpProvider struct {
	name     string
	endpoint string
	client   *resty.Client
}

var _ Provider = (*httpProvider)(nil)

type ocrRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
}

type ocrResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewHTTPProvider builds a Provider that POSTs base64 image data to an OCR
// service endpoint.  An empty endpoint yields an unavailable provider rather
// than a construction error.
func NewHTTPProvider(name, endpoint string, cfg config.OCRConfig) Provider {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &httpProvider{
		name:     name,
		endpoint: endpoint,
		client:   client,
	}
}

func (p *httpProvider) Name() string { return p.name }

func (p *httpProvider) Available() bool { return p.endpoint != "" }

func (p *httpProvider) Extract(ctx context.Context, image []byte) (string, float64, error) {
	if !p.Available() {
		return "", 0, errors.New(errors.ErrCodeOCRNotAvailable,
			fmt.Sprintf("ocr backend %s is not configured", p.name))
	}

	var result ocrResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(ocrRequest{Image: base64.StdEncoding.EncodeToString(image)}).
		SetResult(&result).
		Post(p.endpoint)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeOCRFailed,
			fmt.Sprintf("ocr backend %s request failed", p.name))
	}
	if resp.IsError() {
		return "", 0, errors.New(errors.ErrCodeOCRFailed,
			fmt.Sprintf("ocr backend %s returned status %d", p.name, resp.StatusCode()))
	}

	return result.Text, result.Confidence, nil
}
