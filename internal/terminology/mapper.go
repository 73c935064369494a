package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/cache"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// Mapping confidences.  Name-resolved beats identifier-only beats fuzzy.
const (
	resolvedNameConfidence = 0.9
	identifierConfidence   = 0.7
	fuzzyMatchConfidence   = 0.6
)

const mappingCacheName = "terminology"

// Mapper maps extracted drug names to RxNorm concepts.  It never fails the
// caller; external errors degrade to zero mappings for that drug.
type Mapper interface {
	Search(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping
}

type mapper struct {
	client  Client
	cache   cache.Cache
	cfg     config.TerminologyConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ Mapper = (*mapper)(nil)

// NewMapper builds a Mapper.  store may be nil when no cache is configured;
// metrics may be nil in tests.
func NewMapper(client Client, store cache.Cache, cfg config.TerminologyConfig, logger logging.Logger, metrics *prometheus.AppMetrics) Mapper {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if store == nil {
		store = cache.NopCache{}
	}
	return &mapper{
		client:  client,
		cache:   store,
		cfg:     cfg,
		logger:  logger.Named("terminology.mapper"),
		metrics: metrics,
	}
}

func (m *mapper) Search(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping {
	if maxResults < 1 {
		maxResults = m.cfg.MaxResults
	}
	if maxResults > m.cfg.MaxResultsCeiling {
		maxResults = m.cfg.MaxResultsCeiling
	}
	if Sanitize(drugName) == "" {
		return nil
	}

	if cached, ok := m.fromCache(ctx, drugName, maxResults); ok {
		return cached
	}

	start := time.Now()
	mappings := m.search(ctx, drugName, maxResults)
	if m.metrics != nil {
		prometheus.RecordTerminologyLookup(m.metrics, "search", true, time.Since(start))
	}

	m.toCache(ctx, drugName, maxResults, mappings)
	return mappings
}

func (m *mapper) search(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping {
	rxcuis, err := m.client.Resolve(ctx, drugName)
	if err != nil {
		m.logger.Warn("identifier resolution failed", logging.String("drug", drugName), logging.Err(err))
		return nil
	}

	var mappings []rx.RxNormMapping
	if len(rxcuis) > maxResults {
		rxcuis = rxcuis[:maxResults]
	}
	for _, rxcui := range rxcuis {
		if info := m.client.Describe(ctx, rxcui); info != nil {
			mappings = append(mappings, rx.RxNormMapping{
				RxCUI:      rxcui,
				Name:       info.Name,
				Synonym:    info.Synonym,
				Confidence: resolvedNameConfidence,
				SourceDrug: drugName,
			})
			continue
		}
		// Identifier resolved but no endpoint produced a display name.
		mappings = append(mappings, rx.RxNormMapping{
			RxCUI:      rxcui,
			Name:       drugName,
			Confidence: identifierConfidence,
			SourceDrug: drugName,
		})
	}

	if len(mappings) > 0 {
		return mappings
	}
	return m.fuzzySearch(ctx, drugName, maxResults)
}

func (m *mapper) fuzzySearch(ctx context.Context, drugName string, maxResults int) []rx.RxNormMapping {
	concepts, err := m.client.SearchDrugs(ctx, drugName, maxResults)
	if err != nil {
		m.logger.Debug("fuzzy search failed", logging.String("drug", drugName), logging.Err(err))
		return nil
	}

	var mappings []rx.RxNormMapping
	for _, c := range concepts {
		name := c.Name
		if name == "" {
			name = drugName
		}
		mappings = append(mappings, rx.RxNormMapping{
			RxCUI:      c.RxCUI,
			Name:       name,
			Synonym:    c.Synonym,
			Confidence: fuzzyMatchConfidence,
			SourceDrug: drugName,
		})
	}
	return mappings
}

func (m *mapper) cacheKey(drugName string, maxResults int) string {
	return fmt.Sprintf("map:%s:%d", strings.ToLower(strings.TrimSpace(drugName)), maxResults)
}

func (m *mapper) fromCache(ctx context.Context, drugName string, maxResults int) ([]rx.RxNormMapping, bool) {
	data, found, err := m.cache.Get(ctx, m.cacheKey(drugName, maxResults))
	if err != nil {
		m.logger.Warn("cache read failed", logging.Err(err))
		return nil, false
	}
	if m.metrics != nil {
		prometheus.RecordCacheAccess(m.metrics, mappingCacheName, found)
	}
	if !found {
		return nil, false
	}
	var mappings []rx.RxNormMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		m.logger.Warn("cache entry corrupt, refetching", logging.Err(err))
		return nil, false
	}
	return mappings, true
}

func (m *mapper) toCache(ctx context.Context, drugName string, maxResults int, mappings []rx.RxNormMapping) {
	if len(mappings) == 0 {
		// Negative results are not cached; the service may recover.
		return
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, m.cacheKey(drugName, maxResults), data, 0); err != nil {
		m.logger.Warn("cache write failed", logging.Err(err))
	}
}
