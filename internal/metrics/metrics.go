// Package metrics exposes the fleet's Prometheus instrumentation: role,
// replication progress, and assignment/merge timings.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "elevator_fleet"

var (
	role = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: namespace + "_role",
		Help: "Current node role: 0 = slave, 1 = master.",
	})

	iteration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: namespace + "_state_iteration",
		Help: "Most recent SystemState iteration counter observed by this node.",
	})

	mergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    namespace + "_merge_duration_seconds",
		Help:    "Time spent merging a slave snapshot into the master's SystemState.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	assignDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    namespace + "_assign_duration_seconds",
		Help:    "Time spent invoking the hall-request assigner.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	hallRequestsOutstanding = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: namespace + "_hall_requests_outstanding",
		Help: "Number of hall-call buttons currently Requested or Assigned.",
	})

	electionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: namespace + "_election_transitions_total",
		Help: "Count of role transitions, labeled by the role transitioned into.",
	}, []string{"to_role"})
)

func init() {
	prometheus.MustRegister(role, iteration, mergeDuration, assignDuration, hallRequestsOutstanding, electionTransitions)
}

// SetRole records the node's current role: 1 for master, 0 for slave.
func SetRole(isMaster bool) {
	if isMaster {
		role.Set(1)
	} else {
		role.Set(0)
	}
}

// ObserveIteration records the SystemState iteration counter most
// recently committed or adopted by this node.
func ObserveIteration(n int64) {
	iteration.Set(float64(n))
}

// ObserveMergeDuration records how long a slave-snapshot merge took.
func ObserveMergeDuration(seconds float64) {
	mergeDuration.Observe(seconds)
}

// ObserveAssignDuration records how long a hall-request assigner
// invocation took.
func ObserveAssignDuration(seconds float64) {
	assignDuration.Observe(seconds)
}

// SetHallRequestsOutstanding records the count of pending hall calls.
func SetHallRequestsOutstanding(n int) {
	hallRequestsOutstanding.Set(float64(n))
}

// RecordElectionTransition records a role transition into toRole
// ("master" or "slave").
func RecordElectionTransition(toRole string) {
	electionTransitions.WithLabelValues(toRole).Inc()
}
