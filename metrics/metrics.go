// Package metrics 提供 Prometheus 指标：系数解析次数、打分调用次数与存储延迟。
//
// 所有方法对 nil *Metrics 安全，未启用监控时组件可直接传 nil。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	resolutions   *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	scoreCalls    *prometheus.CounterVec
	scoreErrors   *prometheus.CounterVec
	candidates    prometheus.Histogram
}

// New 创建指标并注册到独立的 Registry（不污染全局 DefaultRegisterer）。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evrank_coefficient_resolutions_total",
			Help: "Coefficient resolutions by source (default or resolved).",
		}, []string{"source"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evrank_coefficient_errors_total",
			Help: "Coefficient resolution failures by error code.",
		}, []string{"code"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evrank_store_get_duration_seconds",
			Help:    "Histogram of key-value store lookup durations by backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		scoreCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evrank_score_requests_total",
			Help: "Scoring requests by operation (score_one or rank_many).",
		}, []string{"operation"}),
		scoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evrank_score_errors_total",
			Help: "Failed scoring requests by operation and error code.",
		}, []string{"operation", "code"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evrank_rank_candidates",
			Help:    "Number of candidates per ranking request.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}
	m.registry.MustRegister(
		m.resolutions,
		m.storeErrors,
		m.storeDuration,
		m.scoreCalls,
		m.scoreErrors,
		m.candidates,
	)
	return m
}

// Registry 返回指标所在的 Registry，便于测试读取。
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics 的 HTTP handler。
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveResolutionError(code string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveStoreGet(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) ObserveScore(operation string, candidates int) {
	if m == nil {
		return
	}
	m.scoreCalls.WithLabelValues(operation).Inc()
	if operation == OpRankMany {
		m.candidates.Observe(float64(candidates))
	}
}

func (m *Metrics) ObserveScoreError(operation, code string) {
	if m == nil {
		return
	}
	m.scoreErrors.WithLabelValues(operation, code).Inc()
}

const (
	OpScoreOne = "score_one"
	OpRankMany = "rank_many"
)
