package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 摄取链路的 Prometheus 指标。
// 使用私有 registry，避免污染默认全局注册表。
type Metrics struct {
	registry *prometheus.Registry

	filesScanned   prometheus.Counter
	filesFailed    prometheus.Counter
	runsNew        prometheus.Counter
	runsDuplicate  prometheus.Counter
	ingestDuration prometheus.Histogram
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		filesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aimmirror",
			Subsystem: "ingest",
			Name:      "files_scanned_total",
			Help:      "Total number of files routed through the ingest pipeline.",
		}),
		filesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aimmirror",
			Subsystem: "ingest",
			Name:      "files_failed_total",
			Help:      "Total number of files that failed to ingest.",
		}),
		runsNew: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aimmirror",
			Subsystem: "ingest",
			Name:      "runs_new_total",
			Help:      "Total number of newly inserted runs.",
		}),
		runsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aimmirror",
			Subsystem: "ingest",
			Name:      "runs_duplicate_total",
			Help:      "Total number of runs skipped as duplicate content.",
		}),
		ingestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aimmirror",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Per-file ingest duration (read, hash, parse, upsert).",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// 以下方法对 nil 接收者安全，未启用指标时调用方无需判空

func (m *Metrics) FileScanned() {
	if m != nil {
		m.filesScanned.Inc()
	}
}

func (m *Metrics) FileFailed() {
	if m != nil {
		m.filesFailed.Inc()
	}
}

func (m *Metrics) RunNew() {
	if m != nil {
		m.runsNew.Inc()
	}
}

func (m *Metrics) RunDuplicate() {
	if m != nil {
		m.runsDuplicate.Inc()
	}
}

func (m *Metrics) ObserveIngest(d time.Duration) {
	if m != nil {
		m.ingestDuration.Observe(d.Seconds())
	}
}
