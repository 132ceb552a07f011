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
// カタログクライアントやサービス層から利用する。
type MetricsCollector interface {
	RecordSearchSuccess()
	RecordSearchFailure(reason string)
	RecordSearchLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordWatchlistMutation(operation string)
	RecordWatchedMutation(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	searchSuccess     prometheus.Counter
	searchFail        *prometheus.CounterVec
	searchLatency     prometheus.Histogram
	httpStatus        *prometheus.CounterVec
	watchlistMutation *prometheus.CounterVec
	watchedMutation   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinelog_catalog_search_success_total",
			Help: "カタログ検索成功の合計数",
		}),
		searchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_catalog_search_fail_total",
			Help: "カタログ検索失敗の合計数（原因別）",
		}, []string{"reason"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinelog_catalog_search_latency_seconds",
			Help:    "カタログ検索のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		watchlistMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_watchlist_mutations_total",
			Help: "ウォッチリスト変更操作の合計数（操作別）",
		}, []string{"operation"}),
		watchedMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_watched_mutations_total",
			Help: "視聴記録変更操作の合計数（操作別）",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.searchSuccess,
		c.searchFail,
		c.searchLatency,
		c.httpStatus,
		c.watchlistMutation,
		c.watchedMutation,
	)

	return c
}

// RecordSearchSuccess はカタログ検索成功を記録する。
func (c *Collector) RecordSearchSuccess() {
	c.searchSuccess.Inc()
}

// RecordSearchFailure はカタログ検索失敗を原因別に記録する。
func (c *Collector) RecordSearchFailure(reason string) {
	c.searchFail.WithLabelValues(reason).Inc()
}

// RecordSearchLatency はカタログ検索のレイテンシを記録する。
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordWatchlistMutation はウォッチリスト変更操作を記録する。
func (c *Collector) RecordWatchlistMutation(operation string) {
	c.watchlistMutation.WithLabelValues(operation).Inc()
}

// RecordWatchedMutation は視聴記録変更操作を記録する。
func (c *Collector) RecordWatchedMutation(operation string) {
	c.watchedMutation.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
