package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "reservations_created_total",
			Help:      "Count of reservations committed to the ledger.",
		},
	)

	reservationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "reservations_cancelled_total",
			Help:      "Count of reservations cancelled.",
		},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "availability_checks_total",
			Help:      "Count of availability checks by outcome reason.",
		},
		[]string{"reason"},
	)

	offeringRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "offering_requests_total",
			Help:      "Count of daily offering computations.",
		},
	)

	persistenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "persistence_failures_total",
			Help:      "Count of best-effort backing store write failures.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "admin_http_requests_total",
			Help:      "Count of admin API requests by handler.",
		},
		[]string{"handler"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "masabot",
			Name:      "domain_events_total",
			Help:      "Count of domain events delivered on the event bus by type.",
		},
		[]string{"type"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationsCreated, reservationsCancelled, availabilityChecks,
			offeringRequests, persistenceFailures, httpRequests, domainEvents,
		)
	})
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncReservationCancelled() {
	reservationsCancelled.Inc()
}

func IncAvailabilityCheck(reason string) {
	availabilityChecks.WithLabelValues(reason).Inc()
}

func IncOfferingRequest() {
	offeringRequests.Inc()
}

func IncPersistenceFailure() {
	persistenceFailures.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncEvent(eventType string) {
	domainEvents.WithLabelValues(eventType).Inc()
}
