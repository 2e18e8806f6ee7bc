package chargepoint

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tasksCreated       *prometheus.CounterVec
	clientFailures     *prometheus.CounterVec
	doubleCompletions  *prometheus.CounterVec
	effectFailures     *prometheus.CounterVec
	pendingTrackers    prometheus.Gauge
	trackerCompletions *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, *prometheus.CounterVec) {
	created := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocpp_tasks_created_total",
			Help: "Number of tasks created per operation",
		},
		[]string{"operation"},
	)
	clients := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocpp_client_construction_failures_total",
			Help: "Recipients that failed before a request could be sent",
		},
		[]string{"operation"},
	)
	doubles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocpp_tracker_double_completion_total",
			Help: "Outcomes delivered for an already completed tracker",
		},
		[]string{"operation"},
	)
	effects := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocpp_effect_failures_total",
			Help: "Side effects that returned an error",
		},
		[]string{"operation"},
	)
	pending := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocpp_pending_trackers",
			Help: "Requests sent and still waiting for an outcome",
		},
	)
	completions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocpp_tracker_completions_total",
			Help: "Terminal tracker transitions per operation and state",
		},
		[]string{"operation", "state"},
	)
	return created, clients, doubles, effects, pending, completions
}

func init() {
	tasksCreated, clientFailures, doubleCompletions, effectFailures, pendingTrackers, trackerCompletions = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tasksCreated, clientFailures, doubleCompletions, effectFailures, pendingTrackers, trackerCompletions)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tasksCreated, clientFailures, doubleCompletions, effectFailures, pendingTrackers, trackerCompletions = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
