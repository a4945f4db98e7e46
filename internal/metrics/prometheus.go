package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyalpha_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyalpha_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"route"},
	)

	// AI provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyalpha_ai_provider_calls_total",
			Help: "Total number of AI provider attempts",
		},
		[]string{"provider", "status"}, // status: succeeded|failed|skipped
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyalpha_ai_provider_latency_seconds",
			Help:    "AI provider call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	ProviderFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "polyalpha_ai_fallbacks_total",
			Help: "Analyses answered by the fallback provider",
		},
	)

	AnalysesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "polyalpha_analyses_failed_total",
			Help: "Analyses where every provider failed",
		},
	)

	ResponseParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyalpha_ai_response_parse_failures_total",
			Help: "Model responses that could not be parsed as JSON",
		},
		[]string{"provider"},
	)

	CommentsAnalyzed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "polyalpha_comments_per_analysis",
			Help:    "Number of comments sent to the model per analysis",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Upstream (gamma API) metrics
	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyalpha_upstream_calls_total",
			Help: "Total number of gamma API calls",
		},
		[]string{"endpoint", "status"}, // status: success|error|cache_hit
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyalpha_upstream_latency_seconds",
			Help:    "Gamma API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Trace events
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyalpha_kafka_messages_total",
			Help: "Attempt trace messages handed to Kafka",
		},
		[]string{"topic", "status"}, // status: queued|dropped|failed
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)

		prometheus.MustRegister(ProviderCalls)
		prometheus.MustRegister(ProviderLatency)
		prometheus.MustRegister(ProviderFallbacks)
		prometheus.MustRegister(AnalysesFailed)
		prometheus.MustRegister(ResponseParseFailures)
		prometheus.MustRegister(CommentsAnalyzed)

		prometheus.MustRegister(UpstreamCalls)
		prometheus.MustRegister(UpstreamLatency)

		prometheus.MustRegister(KafkaMessages)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordProviderAttempt records one AI provider attempt
func RecordProviderAttempt(provider, status string, latency time.Duration) {
	ProviderCalls.WithLabelValues(provider, status).Inc()
	if status != "skipped" {
		ProviderLatency.WithLabelValues(provider).Observe(latency.Seconds())
	}
}

// RecordUpstreamCall records a gamma API call
func RecordUpstreamCall(endpoint string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	UpstreamCalls.WithLabelValues(endpoint, status).Inc()
	UpstreamLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordUpstreamCacheHit records an upstream call served from cache
func RecordUpstreamCacheHit(endpoint string) {
	UpstreamCalls.WithLabelValues(endpoint, "cache_hit").Inc()
}
