package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swallow"

// Cache operation results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder publishes Prometheus metrics for dispatch, rate limiting and
// cache activity. A nil *Recorder is valid and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
	cacheOperations *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
}

// NewRecorder registers collectors on reg. When reg is nil a dedicated
// registry is created so several recorders can coexist in tests.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	r := &Recorder{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests dispatched, by route pattern, method and status.",
		}, []string{"route", "method", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of dispatched requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"route", "method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by backend, operation and result.",
		}, []string{"backend", "operation", "result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Latency of cache operations.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"backend", "operation"}),
	}

	reg.MustRegister(r.requests, r.requestLatency, r.rateLimited, r.cacheOperations, r.cacheLatency)
	r.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return r
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveRequest records one dispatched request. route is the matched
// pattern, or "unmatched".
func (r *Recorder) ObserveRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	route = normalizeLabel(route)
	method = normalizeLabel(method)
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.requestLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveRateLimited records a request rejected with 429.
func (r *Recorder) ObserveRateLimited(route string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(normalizeLabel(route)).Inc()
}

// ObserveCache records one cache operation.
func (r *Recorder) ObserveCache(backend, operation, result string, d time.Duration) {
	if r == nil {
		return
	}
	backend = normalizeLabel(backend)
	operation = normalizeLabel(operation)
	r.cacheOperations.WithLabelValues(backend, operation, normalizeLabel(result)).Inc()
	r.cacheLatency.WithLabelValues(backend, operation).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return "unknown"
}
