// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	ObservationsIngested *prometheus.CounterVec
	ObservationsRejected *prometheus.CounterVec
	IngestErrors         *prometheus.CounterVec

	// Aggregation metrics
	BucketsComputed    prometheus.Counter
	TokensSkippedEmpty prometheus.Counter
	AggregationErrors  prometheus.Counter

	// Scoring metrics
	ScoresComputed   prometheus.Counter
	ScoresByGrade    *prometheus.CounterVec
	StalePillarsSeen *prometheus.CounterVec
	ScoringErrors    prometheus.Counter
	CorrelationsRun  prometheus.Counter
	AlertsFired      *prometheus.CounterVec

	// Latency metrics
	CycleDuration   *prometheus.HistogramVec
	DBQueryDuration *prometheus.HistogramVec
	ObservationLag  prometheus.Histogram

	// API metrics
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RateLimitedReqs prometheus.Counter

	// Health metrics
	LastSuccessfulAggregation prometheus.Gauge
	LastSuccessfulScoring     prometheus.Gauge
	ActiveTokens              prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fantoken_intel"
	}

	return &Metrics{
		// Ingestion metrics
		ObservationsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observations_ingested_total",
			Help:      "Total number of observations accepted, by pillar",
		}, []string{"pillar"}),
		ObservationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observations_rejected_total",
			Help:      "Total number of observations rejected at validation, by pillar and reason",
		}, []string{"pillar", "reason"}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingest errors by source",
		}, []string{"source"}),

		// Aggregation metrics
		BucketsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "buckets_computed_total",
			Help:      "Total number of cross-exchange buckets computed",
		}),
		TokensSkippedEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "tokens_skipped_empty_total",
			Help:      "Total number of aggregation passes skipped for lack of observations",
		}),
		AggregationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "errors_total",
			Help:      "Total number of aggregation errors",
		}),

		// Scoring metrics
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "scores_computed_total",
			Help:      "Total number of health scores computed",
		}),
		ScoresByGrade: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "scores_by_grade_total",
			Help:      "Total number of health scores computed, by grade",
		}, []string{"grade"}),
		StalePillarsSeen: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "stale_pillars_total",
			Help:      "Total number of scores carrying a stale pillar, by pillar",
		}, []string{"pillar"}),
		ScoringErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "errors_total",
			Help:      "Total number of scoring errors",
		}),
		CorrelationsRun: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "analyses_total",
			Help:      "Total number of correlation analyses run",
		}),
		AlertsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "alerts_fired_total",
			Help:      "Total number of alerts fired, by rule and severity",
		}, []string{"rule", "severity"}),

		// Latency metrics
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "cycle_duration_seconds",
			Help:      "Scheduled cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"task"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		ObservationLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observation_lag_seconds",
			Help:      "Delay between an observation's timestamp and its arrival",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimitedReqs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),

		// Health metrics
		LastSuccessfulAggregation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_aggregation_timestamp",
			Help:      "Unix timestamp of last successful aggregation cycle",
		}),
		LastSuccessfulScoring: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scoring_timestamp",
			Help:      "Unix timestamp of last successful scoring cycle",
		}),
		ActiveTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "active_tokens",
			Help:      "Number of active tokens in the catalog",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordObservationIngested increments the accepted-observation counter.
func RecordObservationIngested(pillar string) {
	DefaultMetrics.ObservationsIngested.WithLabelValues(pillar).Inc()
}

// RecordObservationRejected increments the rejected-observation counter.
func RecordObservationRejected(pillar, reason string) {
	DefaultMetrics.ObservationsRejected.WithLabelValues(pillar, reason).Inc()
}

// RecordAlertFired increments the fired-alert counter.
func RecordAlertFired(rule, severity string) {
	DefaultMetrics.AlertsFired.WithLabelValues(rule, severity).Inc()
}
