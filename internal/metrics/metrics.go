// Package metrics defines the prometheus collectors for the polling
// pipeline and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PollsTotal counts completed poll cycles, by outcome.
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elnet",
			Name:      "polls_total",
			Help:      "Total number of poll cycles by outcome",
		},
		[]string{"outcome"},
	)

	// ReadingsRejected counts readings dropped by the validator, by reason.
	ReadingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elnet",
			Name:      "readings_rejected_total",
			Help:      "Readings rejected before state processing, by reason",
		},
		[]string{"reason"},
	)

	// Transitions counts detected power-source switches, by direction.
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elnet",
			Name:      "power_transitions_total",
			Help:      "Detected power-source transitions, by direction",
		},
		[]string{"direction"},
	)

	// NotificationsSent counts event messages handed to the notifier.
	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "elnet",
			Name:      "notifications_sent_total",
			Help:      "Event messages dispatched to the notifier",
		},
	)

	// NotificationsFailed counts per-channel delivery failures.
	NotificationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "elnet",
			Name:      "notifications_failed_total",
			Help:      "Failed notification deliveries, by channel",
		},
		[]string{"channel"},
	)
)

// Register registers all pipeline collectors explicitly (no init side
// effects).
func Register() {
	prometheus.MustRegister(PollsTotal)
	prometheus.MustRegister(ReadingsRejected)
	prometheus.MustRegister(Transitions)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(NotificationsFailed)
	registerHTTPMetrics()
}
