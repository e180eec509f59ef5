// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とワーカーから利用する。
type MetricsCollector interface {
	RecordSearchRequest()
	RecordSearchFallback()
	RecordSearchLatency(duration time.Duration)
	RecordPushDelivered()
	RecordPushFailure()
	RecordArticlesIngested(count int)
	RecordIngestFailure(sourceID string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	searchRequests   prometheus.Counter
	searchFallbacks  prometheus.Counter
	searchLatency    prometheus.Histogram
	pushDelivered    prometheus.Counter
	pushFailed       prometheus.Counter
	articlesIngested prometheus.Counter
	ingestFailed     prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_search_requests_total",
			Help: "記事検索リクエストの合計数",
		}),
		searchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_search_fallback_total",
			Help: "カテゴリフォールバック検索が発動した合計数",
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsapi_search_latency_seconds",
			Help:    "記事検索のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		pushDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_push_delivered_total",
			Help: "プッシュ通知配信成功の合計数",
		}),
		pushFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_push_failed_total",
			Help: "プッシュ通知配信失敗の合計数",
		}),
		articlesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_articles_ingested_total",
			Help: "取り込みで新規作成された記事の合計数",
		}),
		ingestFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsapi_ingest_failed_total",
			Help: "フィード取り込み失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsapi_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.searchRequests,
		c.searchFallbacks,
		c.searchLatency,
		c.pushDelivered,
		c.pushFailed,
		c.articlesIngested,
		c.ingestFailed,
		c.httpStatus,
	)

	return c
}

// RecordSearchRequest は検索リクエストを記録する。
func (c *Collector) RecordSearchRequest() {
	c.searchRequests.Inc()
}

// RecordSearchFallback はカテゴリフォールバックの発動を記録する。
func (c *Collector) RecordSearchFallback() {
	c.searchFallbacks.Inc()
}

// RecordSearchLatency は検索のレイテンシを記録する。
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// RecordPushDelivered はプッシュ通知の配信成功を記録する。
func (c *Collector) RecordPushDelivered() {
	c.pushDelivered.Inc()
}

// RecordPushFailure はプッシュ通知の配信失敗を記録する。
func (c *Collector) RecordPushFailure() {
	c.pushFailed.Inc()
}

// RecordArticlesIngested は取り込みで新規作成された記事数を記録する。
func (c *Collector) RecordArticlesIngested(count int) {
	c.articlesIngested.Add(float64(count))
}

// RecordIngestFailure はフィード取り込み失敗を記録する。
func (c *Collector) RecordIngestFailure(sourceID string) {
	c.ingestFailed.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
