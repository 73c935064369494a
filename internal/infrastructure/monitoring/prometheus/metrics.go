package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds the pipeline's metric families, one group per stage.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Extraction
	ExtractionsTotal     CounterVec
	ExtractionDuration   HistogramVec
	ExtractedMedications HistogramVec
	ExtractionConfidence HistogramVec

	// Terminology
	TerminologyLookupsTotal  CounterVec
	TerminologyLookupLatency HistogramVec
	CacheHitsTotal           CounterVec
	CacheMissesTotal         CounterVec

	// Interactions
	InteractionChecksTotal CounterVec
	InteractionsFound      CounterVec

	// Safety
	SafetyAlertsTotal CounterVec

	// OCR
	OCRAttemptsTotal CounterVec
	OCRConfidence    HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultLookupLatencyBuckets  = []float64{.01, .025, .05, .1, .25, .5, 1, 2, 5}
	DefaultConfidenceBuckets     = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, .95, 1}
	DefaultMedicationCountBucket = []float64{0, 1, 2, 3, 5, 8, 13, 21}
)

// NewAppMetrics registers every metric family against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Extraction
	m.ExtractionsTotal = collector.RegisterCounter("extractions_total", "Extraction runs", "method", "status")
	m.ExtractionDuration = collector.RegisterHistogram("extraction_duration_seconds", "Extraction duration", DefaultHTTPDurationBuckets, "method")
	m.ExtractedMedications = collector.RegisterHistogram("extracted_medications", "Medications detected per request", DefaultMedicationCountBucket, "method")
	m.ExtractionConfidence = collector.RegisterHistogram("extraction_confidence", "Per-medication extraction confidence", DefaultConfidenceBuckets, "method")

	// Terminology
	m.TerminologyLookupsTotal = collector.RegisterCounter("terminology_lookups_total", "Terminology service lookups", "endpoint", "status")
	m.TerminologyLookupLatency = collector.RegisterHistogram("terminology_lookup_duration_seconds", "Terminology lookup latency", DefaultLookupLatencyBuckets, "endpoint")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// Interactions
	m.InteractionChecksTotal = collector.RegisterCounter("interaction_checks_total", "Interaction check runs", "status")
	m.InteractionsFound = collector.RegisterCounter("interactions_found_total", "Pairwise interactions found", "severity")

	// Safety
	m.SafetyAlertsTotal = collector.RegisterCounter("safety_alerts_total", "Safety alerts raised", "rule", "severity")

	// OCR
	m.OCRAttemptsTotal = collector.RegisterCounter("ocr_attempts_total", "OCR provider attempts", "provider", "status")
	m.OCRConfidence = collector.RegisterHistogram("ocr_confidence", "OCR result confidence", DefaultConfidenceBuckets, "provider")

	// Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Component health (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordExtraction(metrics *AppMetrics, method string, success bool, medCount int, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.ExtractionsTotal.WithLabelValues(method, status).Inc()
	metrics.ExtractionDuration.WithLabelValues(method).Observe(duration.Seconds())
	metrics.ExtractedMedications.WithLabelValues(method).Observe(float64(medCount))
}

func RecordTerminologyLookup(metrics *AppMetrics, endpoint string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.TerminologyLookupsTotal.WithLabelValues(endpoint, status).Inc()
	metrics.TerminologyLookupLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordSafetyAlert(metrics *AppMetrics, rule, severity string) {
	metrics.SafetyAlertsTotal.WithLabelValues(rule, severity).Inc()
}

func RecordOCRAttempt(metrics *AppMetrics, provider string, success bool, confidence float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.OCRAttemptsTotal.WithLabelValues(provider, status).Inc()
	if success {
		metrics.OCRConfidence.WithLabelValues(provider).Observe(confidence)
	}
}

func RecordError(metrics *AppMetrics, component, errorCode string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorCode).Inc()
}
