package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "singlish_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_rate_limit_hits_total",
		Help: "Total rate limit rejections by surface",
	}, []string{"surface"})

	FeedbackSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_feedback_submissions_total",
		Help: "Feedback submissions by result",
	}, []string{"result"})

	PassthroughWords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_passthrough_words",
		Help: "Number of words in the active passthrough registry",
	})
)

// Conversion metrics, labelled by the surface that requested the conversion
// (web, bot, cli).
var (
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_conversions_total",
		Help: "Conversions by surface",
	}, []string{"surface"})

	UnresolvedWordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_unresolved_words_total",
		Help: "Words left unconverted because no rule segmentation exists",
	}, []string{"surface"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "singlish_conversion_duration_seconds",
		Help:    "Engine conversion duration in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	ConversionInputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "singlish_conversion_input_bytes",
		Help:    "Size of conversion inputs in bytes",
		Buckets: prometheus.ExponentialBuckets(8, 4, 8),
	})
)

// Retention metrics.
var (
	FeedbackDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singlish_feedback_deleted_total",
		Help: "Feedback rows removed by retention cleanup",
	})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
