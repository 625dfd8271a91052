package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Источники компиляции (label source).
const (
	SourceHTTP  = "http"
	SourceQueue = "queue"
	SourceCLI   = "cli"
)

var (
	compilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowgraph_compilations_total",
		Help: "Total workflow compilations by source and result code",
	}, []string{"source", "result"})

	issuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowgraph_validation_issues_total",
		Help: "Total validation issues reported by kind",
	}, []string{"kind"})

	compileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flowgraph_compile_duration_seconds",
		Help:    "Workflow compilation duration",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"source"})

	graphNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowgraph_graph_nodes",
		Help:    "Number of nodes in compiled graphs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowgraph_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
)

// CompileObservation — итог одной компиляции для метрик.
type CompileObservation struct {
	Source   string
	Result   string // engine.ErrorCode
	Duration time.Duration
	Nodes    int
	Issues   map[string]int // kind → количество
}

// ObserveCompile записывает метрики компиляции.
func ObserveCompile(o CompileObservation) {
	compilationsTotal.WithLabelValues(o.Source, o.Result).Inc()
	compileDuration.WithLabelValues(o.Source).Observe(o.Duration.Seconds())

	if o.Nodes > 0 {
		graphNodes.Observe(float64(o.Nodes))
	}
	for kind, n := range o.Issues {
		issuesTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveHTTPRequest увеличивает счётчик HTTP запросов.
func ObserveHTTPRequest(route string, status int) {
	httpRequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
