package dating

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	discoverRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dating_discover_requests_total",
			Help: "Total number of discover requests by outcome",
		},
		[]string{"outcome"},
	)

	interactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dating_interactions_total",
			Help: "Total number of persisted interactions",
		},
		[]string{"action"},
	)

	hotpicksGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_hotpicks_generated_total",
			Help: "Total number of hotpicks generated",
		},
	)

	hotpicksExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_hotpicks_expired_total",
			Help: "Total number of expired hotpicks removed",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dating_compatibility_scores",
			Help:    "Distribution of final match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	responseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dating_response_time_seconds",
			Help: "Response time for matching operations",
		},
		[]string{"action"},
	)
)

func RecordDiscover(outcome string) {
	discoverRequests.WithLabelValues(outcome).Inc()
}

func RecordInteraction(action string) {
	interactionsTotal.WithLabelValues(action).Inc()
}

func RecordHotpicks(n int) {
	hotpicksGenerated.Add(float64(n))
}

func RecordExpiredHotpicks(n int64) {
	hotpicksExpired.Add(float64(n))
}

func RecordCompatibilityScore(score int) {
	compatibilityScores.Observe(float64(score))
}

func RecordResponseTime(action string, duration time.Duration) {
	responseTime.WithLabelValues(action).Observe(duration.Seconds())
}
