package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_RegistersMetrics は全メトリクスがレジストリに登録されることを検証する。
func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSearchRequest()
	c.RecordSearchFallback()
	c.RecordSearchLatency(120 * time.Millisecond)
	c.RecordPushDelivered()
	c.RecordPushFailure()
	c.RecordArticlesIngested(3)
	c.RecordIngestFailure("source-1")
	c.RecordHTTPStatus(200)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}

	wantNames := []string{
		"newsapi_search_requests_total",
		"newsapi_search_fallback_total",
		"newsapi_search_latency_seconds",
		"newsapi_push_delivered_total",
		"newsapi_push_failed_total",
		"newsapi_articles_ingested_total",
		"newsapi_ingest_failed_total",
		"newsapi_http_status_total",
	}
	for _, name := range wantNames {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSearchRequest()

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "newsapi_search_requests_total") {
		t.Error("response should contain newsapi_search_requests_total metric")
	}
}

// TestCollector_ImplementsInterface はCollectorがMetricsCollectorを満たすことを検証する。
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
}
