// Package metrics exposes the Prometheus counters the bootstrap
// tournament emits: per-engine run/failure counts, selector outcomes, and
// the safety-valve trigger rate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EnginesRun = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootci_engines_run_total",
			Help: "Total number of bootstrap engine runs (by method).",
		},
		[]string{"method"},
	)

	EngineFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootci_engine_failures_total",
			Help: "Total number of bootstrap engine runs that failed (by method).",
		},
		[]string{"method"},
	)

	ReplicatesDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootci_replicates_discarded_total",
			Help: "Total number of non-finite bootstrap replicates discarded (by method).",
		},
		[]string{"method"},
	)

	TournamentsRun = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bootci_tournaments_run_total",
			Help: "Total number of auto-selector tournaments started, including ones that fail.",
		},
	)

	SelectedMethod = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootci_selected_method_total",
			Help: "Number of tournaments where a given method was selected.",
		},
		[]string{"method"},
	)

	BCaRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootci_bca_rejected_total",
			Help: "Number of tournaments where the BCa candidate was rejected (by reason).",
		},
		[]string{"reason"},
	)

	SafetyValveTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bootci_safety_valve_triggered_total",
			Help: "Number of tournaments where M-out-of-N won after BCa was rejected.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EnginesRun,
		EngineFailures,
		ReplicatesDiscarded,
		TournamentsRun,
		SelectedMethod,
		BCaRejected,
		SafetyValveTriggered,
	)
}
