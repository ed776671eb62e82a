// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doghouse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "doghouse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	tierOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doghouse",
			Subsystem: "retrieval",
			Name:      "tier_outcomes_total",
			Help:      "Outcomes of each fallback tier attempt.",
		},
		[]string{"tier", "outcome"},
	)

	listingSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doghouse",
			Subsystem: "retrieval",
			Name:      "listings_total",
			Help:      "Listings served, by source.",
		},
		[]string{"source"},
	)

	seedRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doghouse",
			Subsystem: "storage",
			Name:      "seed_runs_total",
			Help:      "Seed attempts, by result.",
		},
		[]string{"result"},
	)

	storageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doghouse",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Storage errors observed by the ORM, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		tierOutcomes,
		listingSource,
		seedRuns,
		storageErrors,
	)
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordTierOutcome counts one tier attempt.
func RecordTierOutcome(tier, outcome string) {
	tierOutcomes.WithLabelValues(tier, outcome).Inc()
}

// RecordListing counts one /data response.
func RecordListing(source string) {
	listingSource.WithLabelValues(source).Inc()
}

// RecordSeed counts one seed attempt.
func RecordSeed(result string) {
	seedRuns.WithLabelValues(result).Inc()
}

// RecordStorageError counts one classified storage error.
func RecordStorageError(kind string) {
	storageErrors.WithLabelValues(kind).Inc()
}
