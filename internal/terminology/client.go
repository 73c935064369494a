// Package terminology talks to the RxNorm terminology service: identifier
// resolution, concept description, fuzzy drug search, and pairwise
// interaction lookup.  Every operation degrades to an empty result on
// external failure; nothing in this package is fatal to an analysis.
package terminology

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// ConceptInfo is a resolved concept description.
type ConceptInfo struct {
	Name    string
	Synonym string
	TTY     string
}

// Concept is one fuzzy-search hit from the drugs endpoint.
type Concept struct {
	RxCUI   string `json:"rxcui"`
	Name    string `json:"name"`
	Synonym string `json:"synonym"`
}

// InteractionPair is one normalized pairwise interaction from the wire.
type InteractionPair struct {
	Drug1       string
	Drug2       string
	Description string
}

// Client is the low-level terminology service contract.
type Client interface {
	// Resolve maps a drug name to canonical identifiers.  An empty
	// sanitized name short-circuits to no results without a network call.
	// An HTTP 400 is retried once with the sanitized name when it differs
	// from the original query.
	Resolve(ctx context.Context, drugName string) ([]string, error)

	// Describe fetches a display name for an identifier, trying several
	// endpoints in order and accepting the first non-empty result.
	// Returns nil when no endpoint yields a name.
	Describe(ctx context.Context, rxcui string) *ConceptInfo

	// SearchDrugs is the fuzzy fallback used when Resolve yields nothing.
	SearchDrugs(ctx context.Context, drugName string, limit int) ([]Concept, error)

	// Interactions queries the interaction endpoint with all identifiers
	// joined.  Callers must pass at least two identifiers.
	Interactions(ctx context.Context, rxcuis []string) ([]InteractionPair, error)
}

// sanitizePattern drops every character outside alphanumeric, underscore,
// whitespace, and hyphen.
var sanitizePattern = regexp.MustCompile(`[^\w\s-]`)

// Sanitize strips characters the terminology service rejects.
func Sanitize(name string) string {
	return strings.TrimSpace(sanitizePattern.ReplaceAllString(name, ""))
}

// ─────────────────────────────────────────────────────────────────────────────
// Wire formats
// ─────────────────────────────────────────────────────────────────────────────

type rxcuiResponse struct {
	IDGroup struct {
		RxNormID FlexList[string] `json:"rxnormId"`
	} `json:"idGroup"`
}

type wireConcept struct {
	RxCUI   string `json:"rxcui"`
	Name    string `json:"name"`
	Synonym string `json:"synonym"`
	TTY     string `json:"tty"`
}

type allRelatedResponse struct {
	AllRelatedGroup struct {
		ConceptGroup FlexList[struct {
			Concept FlexList[wireConcept] `json:"concept"`
		}] `json:"conceptGroup"`
	} `json:"allRelatedGroup"`
}

type propertyResponse struct {
	PropValue struct {
		Value string `json:"value"`
	} `json:"propValue"`
}

type drugsResponse struct {
	DrugGroup struct {
		ConceptGroup FlexList[struct {
			Concept FlexList[wireConcept] `json:"concept"`
		}] `json:"conceptGroup"`
	} `json:"drugGroup"`
}

type interactionResponse struct {
	InteractionTypeGroup FlexList[struct {
		InteractionType FlexList[struct {
			InteractionPair FlexList[wireInteractionPair] `json:"interactionPair"`
		}] `json:"interactionType"`
	}] `json:"interactionTypeGroup"`
}

type wireInteractionPair struct {
	InteractionConcept []struct {
		MinConceptItem struct {
			Name string `json:"name"`
		} `json:"minConceptItem"`
	} `json:"interactionConcept"`
	Description string `json:"description"`
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP implementation
// ─────────────────────────────────────────────────────────────────────────────

type httpClient struct {
	client *resty.Client
	logger logging.Logger
}

var _ Client = (*httpClient)(nil)

// NewHTTPClient builds a Client against the configured base URL.
func NewHTTPClient(cfg config.TerminologyConfig, logger logging.Logger) Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &httpClient{
		client: client,
		logger: logger.Named("terminology.client"),
	}
}

func (c *httpClient) Resolve(ctx context.Context, drugName string) ([]string, error) {
	sanitized := Sanitize(drugName)
	if sanitized == "" {
		c.logger.Warn("drug name sanitized to empty string", logging.String("drug", drugName))
		return nil, nil
	}

	query := strings.TrimSpace(drugName)
	ids, status, err := c.resolveOnce(ctx, query)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest && sanitized != query {
		c.logger.Warn("identifier lookup rejected, retrying with sanitized name",
			logging.String("drug", drugName))
		ids, status, err = c.resolveOnce(ctx, sanitized)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, errors.New(errors.ErrCodeTerminologyUnavailable,
			fmt.Sprintf("identifier lookup returned status %d", status))
	}
	return ids, nil
}

func (c *httpClient) resolveOnce(ctx context.Context, name string) ([]string, int, error) {
	var body rxcuiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetResult(&body).
		Get("/rxcui.json")
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeTerminologyUnavailable, "identifier lookup failed")
	}
	return body.IDGroup.RxNormID, resp.StatusCode(), nil
}

func (c *httpClient) Describe(ctx context.Context, rxcui string) *ConceptInfo {
	if info := c.describeAllRelated(ctx, rxcui); info != nil {
		return info
	}
	for _, propName := range []string{"RxNorm Name", "Display Name"} {
		if info := c.describeProperty(ctx, rxcui, propName); info != nil {
			return info
		}
	}
	return nil
}

func (c *httpClient) describeAllRelated(ctx context.Context, rxcui string) *ConceptInfo {
	var body allRelatedResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("/rxcui/%s/allrelated.json", rxcui))
	if err != nil || resp.StatusCode() != http.StatusOK {
		return nil
	}
	for _, group := range body.AllRelatedGroup.ConceptGroup {
		for _, concept := range group.Concept {
			if concept.Name == "" {
				continue
			}
			return &ConceptInfo{Name: concept.Name, Synonym: concept.Synonym, TTY: concept.TTY}
		}
	}
	return nil
}

func (c *httpClient) describeProperty(ctx context.Context, rxcui, propName string) *ConceptInfo {
	var body propertyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("propName", propName).
		SetResult(&body).
		Get(fmt.Sprintf("/rxcui/%s/property.json", rxcui))
	if err != nil || resp.StatusCode() != http.StatusOK {
		return nil
	}
	if body.PropValue.Value == "" {
		return nil
	}
	return &ConceptInfo{Name: body.PropValue.Value}
}

func (c *httpClient) SearchDrugs(ctx context.Context, drugName string, limit int) ([]Concept, error) {
	var body drugsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("name", drugName).
		SetResult(&body).
		Get("/drugs.json")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTerminologyUnavailable, "drug search failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.New(errors.ErrCodeTerminologyUnavailable,
			fmt.Sprintf("drug search returned status %d", resp.StatusCode()))
	}

	var out []Concept
	for _, group := range body.DrugGroup.ConceptGroup {
		for _, concept := range group.Concept {
			if len(out) >= limit {
				return out, nil
			}
			out = append(out, Concept{RxCUI: concept.RxCUI, Name: concept.Name, Synonym: concept.Synonym})
		}
	}
	return out, nil
}

func (c *httpClient) Interactions(ctx context.Context, rxcuis []string) ([]InteractionPair, error) {
	var body interactionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("rxcuis", strings.Join(rxcuis, " ")).
		SetResult(&body).
		Get("/interaction/list.json")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInteractionLookup, "interaction lookup failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.New(errors.ErrCodeInteractionLookup,
			fmt.Sprintf("interaction lookup returned status %d", resp.StatusCode()))
	}

	var pairs []InteractionPair
	for _, group := range body.InteractionTypeGroup {
		for _, itype := range group.InteractionType {
			for _, pair := range itype.InteractionPair {
				if len(pair.InteractionConcept) < 2 {
					continue
				}
				pairs = append(pairs, InteractionPair{
					Drug1:       pair.InteractionConcept[0].MinConceptItem.Name,
					Drug2:       pair.InteractionConcept[1].MinConceptItem.Name,
					Description: pair.Description,
				})
			}
		}
	}
	return pairs, nil
}
