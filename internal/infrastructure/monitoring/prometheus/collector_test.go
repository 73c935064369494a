package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	cfg := CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter_IncAndScrape(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("lookups_total", "lookups", "endpoint")
	vec.WithLabelValues("rxcui").Inc()
	vec.WithLabelValues("rxcui").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_lookups_total{endpoint="rxcui"} 3`)
}

func TestRegisterCounter_DuplicateReturnsSame(t *testing.T) {
	c := newTestCollector(t)
	a := c.RegisterCounter("dup_total", "d", "l")
	b := c.RegisterCounter("dup_total", "d", "l")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_dup_total{l="x"} 2`)
}

func TestRegisterGauge_SetAndScrape(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterGauge("component_up", "up", "component")
	vec.WithLabelValues("redis").Set(1)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_component_up{component="redis"} 1`)
}

func TestRegisterHistogram_ObserveAndScrape(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("latency_seconds", "latency", []float64{0.1, 1}, "stage")
	vec.WithLabelValues("extract").Observe(0.05)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_count{stage="extract"} 1`)
}

func TestRegisterCounter_ConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterGauge("shape_shift", "g", "l")
	// Same name, different type: registration fails, caller gets a no-op.
	vec := c.RegisterCounter("shape_shift", "c", "other")
	assert.NotNil(t, vec)
	vec.WithLabelValues("x").Inc() // must not panic
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterHistogram("timed_seconds", "timed", nil, "op")
	timer := NewTimer(vec.WithLabelValues("map"))
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_timed_seconds_count{op="map"} 1`)
}

func TestTimer_NilHistogramNoPanic(t *testing.T) {
	timer := &Timer{}
	timer.ObserveDuration()
}

func TestCollector_ConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec := c.RegisterCounter("concurrent_total", "c", "l")
			vec.WithLabelValues("x").Inc()
		}()
	}
	wg.Wait()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_concurrent_total{l="x"} 10`)
}
