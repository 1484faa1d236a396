// Package metrics 定义推荐服务的 Prometheus 指标，通过 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推荐请求结果。
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	// RecommendRequestsTotal 按结果统计推荐请求数
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homerec_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendDurationSeconds 推荐请求端到端耗时
	RecommendDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homerec_recommend_duration_seconds",
			Help:    "Latency of recommendation requests",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// SignalMissesTotal 统计信号缺失次数（商品不在向量库 / 目录中、行为数据源降级）
	SignalMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homerec_signal_misses_total",
			Help: "Number of times a scoring signal had no data",
		},
		[]string{"signal"},
	)

	// PipelineNodeDurationSeconds 后处理 Pipeline 中每个 Node 的耗时
	PipelineNodeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homerec_pipeline_node_duration_seconds",
			Help:    "Latency of each pipeline node",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"node"},
	)

	// EmbeddingRows 当前加载的向量行数（商品数）
	EmbeddingRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homerec_embedding_rows",
			Help: "Number of products in the loaded embedding store",
		},
	)
)

// SignalMiss 记录一次信号缺失。
func SignalMiss(signal string) {
	SignalMissesTotal.WithLabelValues(signal).Inc()
}
