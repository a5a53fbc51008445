// internal/patterns/metrics.go

package patterns

import "github.com/prometheus/client_golang/prometheus"

var (
	interactionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_interactions_recorded_total",
		Help: "Interactions appended to the pattern buffer",
	}, []string{"action"})

	successPatternsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchmaker_success_patterns_total",
		Help: "Success patterns derived from match and message events",
	})

	// outcome = "applied", "no_preferences" or "fallback"
	enhancementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_enhancements_total",
		Help: "Pattern-based re-ranking attempts by outcome",
	}, []string{"outcome"})

	preferenceCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_preference_cache_lookups_total",
		Help: "Preference cache lookups by result",
	}, []string{"result"})

	mlScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchmaker_ml_scores",
		Help:    "Distribution of pattern-derived candidate scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

func init() {
	prometheus.MustRegister(
		interactionsRecorded,
		successPatternsRecorded,
		enhancementsTotal,
		preferenceCacheLookups,
		mlScores,
	)
}
