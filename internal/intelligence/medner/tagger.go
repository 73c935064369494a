// Package medner wraps the external medical token-classification service and
// converts its tagged spans into medication records for the extraction
// coordinator.
package medner

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// Entity is one tagged span returned by the token-classification service.
type Entity struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

// Tagger is the client contract for the token-classification service.
type Tagger interface {
	// Tag sends text to the service and returns the tagged spans in
	// document order.
	Tag(ctx context.Context, text string) ([]Entity, error)

	// Available reports whether the tagger is configured and enabled.
	Available() bool
}

type httpTagger struct {
	client *resty.Client
	cfg    config.TaggerConfig
	logger logging.Logger
}

var _ Tagger = (*httpTagger)(nil)

type tagRequest struct {
	Text string `json:"text"`
}

// NewHTTPTagger builds a Tagger that POSTs to the configured endpoint.
func NewHTTPTagger(cfg config.TaggerConfig, logger logging.Logger) Tagger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &httpTagger{
		client: client,
		cfg:    cfg,
		logger: logger.Named("medner.tagger"),
	}
}

func (t *httpTagger) Available() bool {
	return t.cfg.Enabled && t.cfg.Endpoint != ""
}

func (t *httpTagger) Tag(ctx context.Context, text string) ([]Entity, error) {
	if !t.Available() {
		return nil, errors.New(errors.ErrCodeTaggerNotAvailable, "tagger is not configured")
	}

	var entities []Entity
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(tagRequest{Text: text}).
		SetResult(&entities).
		Post(t.cfg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTaggerFailed, "tagger request failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.ErrCodeTaggerFailed,
			fmt.Sprintf("tagger returned status %d", resp.StatusCode()))
	}

	t.logger.Debug("tagger response received", logging.Int("entities", len(entities)))
	return entities, nil
}
