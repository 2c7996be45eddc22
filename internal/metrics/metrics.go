package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arenabook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arenabook",
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle events by type.",
		},
		[]string{"event"},
	)

	conflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arenabook",
			Name:      "booking_conflicts_detected_total",
			Help:      "Slot overlaps surfaced by conflict reports.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, conflictsDetected)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

// IncTransition counts one booking lifecycle event.
func IncTransition(event string) {
	bookingTransitions.WithLabelValues(event).Inc()
}

// IncConflicts counts surfaced overlaps.
func IncConflicts(n int) {
	conflictsDetected.Add(float64(n))
}
