package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	readingsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reading_days_recorded_total",
		Help: "Number of new daily ledger rows created",
	})
	streaksAdvanced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streaks_advanced_total",
		Help: "Number of streak advancements",
	})
	challengesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "challenges_completed_total",
		Help: "Number of challenge completions, including milestone awards",
	})
)

// RegisterMetrics registers the engine counters. Call this from main.go
func RegisterMetrics() {
	prometheus.MustRegister(readingsRecorded)
	prometheus.MustRegister(streaksAdvanced)
	prometheus.MustRegister(challengesCompleted)
}
