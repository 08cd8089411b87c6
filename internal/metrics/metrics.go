// Package metrics exposes Prometheus collectors for the bookmark service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestTotal                *prometheus.CounterVec
	crawlAttemptsTotal         *prometheus.CounterVec
	enrichFailuresTotal        prometheus.Counter
	quotaRejectionsTotal       prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ingestTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmark_ingest_total",
				Help: "Total number of ingestion runs, labeled by outcome.",
			},
			[]string{"status"},
		)

		crawlAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmark_crawl_attempts_total",
				Help: "Total crawl attempts, labeled by result (ok or error code).",
			},
			[]string{"result"},
		)

		enrichFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmark_enrich_failures_total",
				Help: "Total enrichment calls degraded due to upstream failure.",
			},
		)

		quotaRejectionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmark_quota_rejections_total",
				Help: "Total saves rejected by the free-tier quota.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveIngest increments the ingestion counter for the given outcome.
func ObserveIngest(status string) {
	if ingestTotal == nil {
		return
	}
	ingestTotal.WithLabelValues(status).Inc()
}

// ObserveCrawlAttempt records one crawl attempt result.
func ObserveCrawlAttempt(result string) {
	if crawlAttemptsTotal == nil {
		return
	}
	crawlAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveEnrichFailure increments the degraded-enrichment counter.
func ObserveEnrichFailure() {
	if enrichFailuresTotal == nil {
		return
	}
	enrichFailuresTotal.Inc()
}

// ObserveQuotaRejection increments the quota rejection counter.
func ObserveQuotaRejection() {
	if quotaRejectionsTotal == nil {
		return
	}
	quotaRejectionsTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
