package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	signalsIngested     *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec
	analysisStreams     *prometheus.CounterVec
	analysisDuration    prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.signalsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_signals_ingested_total",
			Help: "Total number of signals accepted into the lifecycle",
		},
		[]string{"source", "status"},
	)
	r.transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_lifecycle_transitions_total",
			Help: "Total number of lifecycle transitions applied",
		},
		[]string{"from", "to"},
	)
	r.validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_validation_failures_total",
			Help: "Total number of signals rejected by the validator",
		},
		[]string{"kind"},
	)
	r.rateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_ratelimit_rejections_total",
			Help: "Total number of requests denied admission",
		},
		[]string{"scope"},
	)
	r.analysisStreams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_analysis_streams_total",
			Help: "Total number of advisory analysis streams",
		},
		[]string{"status"},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexus_analysis_stream_duration_seconds",
			Help:    "Advisory stream duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	reg.MustRegister(r.signalsIngested)
	reg.MustRegister(r.transitionsTotal)
	reg.MustRegister(r.validationFailures)
	reg.MustRegister(r.rateLimitRejections)
	reg.MustRegister(r.analysisStreams)
	reg.MustRegister(r.analysisDuration)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordIngest records a signal accepted into the lifecycle.
func (r *Registry) RecordIngest(source, status string) {
	r.signalsIngested.WithLabelValues(source, status).Inc()
}

// RecordTransition records an applied lifecycle transition.
func (r *Registry) RecordTransition(from, to string) {
	r.transitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordValidationFailure records a validator rejection by kind.
func (r *Registry) RecordValidationFailure(kind string) {
	r.validationFailures.WithLabelValues(kind).Inc()
}

// RecordRateLimitRejection records a denied admission for a scope.
func (r *Registry) RecordRateLimitRejection(scope string) {
	r.rateLimitRejections.WithLabelValues(scope).Inc()
}

// RecordAnalysisStream records a finished advisory stream.
func (r *Registry) RecordAnalysisStream(status string, duration float64) {
	r.analysisStreams.WithLabelValues(status).Inc()
	r.analysisDuration.Observe(duration)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
