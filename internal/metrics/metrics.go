// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listing"

var (
	// Runs counts finished runs by outcome ("ok" or an error code).
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Reconciliation runs by outcome.",
	}, []string{"outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of successful reconciliation runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_runs",
		Help:      "Runs currently holding a slot.",
	})

	FeedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_rows_total",
		Help:      "Rows read from uploaded feeds by channel.",
	}, []string{"channel"})

	SchemaErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_errors_total",
		Help:      "Feeds skipped for missing required columns.",
	}, []string{"channel"})

	Statuses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_statuses_total",
		Help:      "Classified item statuses by channel and status.",
	}, []string{"channel", "status"})

	ReviewItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_items_total",
		Help:      "Items flagged for review.",
	})

	// HTTPRequests is labelled by chi route pattern, not raw path, to keep
	// cardinality bounded.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
