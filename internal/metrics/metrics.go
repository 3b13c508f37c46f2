// Package metrics exposes Prometheus counters for scheduling operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_bookings_total",
		Help: "Appointments created through the booking transaction.",
	})

	CancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_cancellations_total",
		Help: "Appointments cancelled, by initiator.",
	}, []string{"cancelled_by"})

	ReschedulesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_reschedules_total",
		Help: "Appointments moved to a new staff/date/time.",
	})

	AvailabilityConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_availability_conflicts_total",
		Help: "Commit-time availability conflicts, by operation.",
	}, []string{"op"})

	LocksAcquiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_slot_locks_acquired_total",
		Help: "Slot locks successfully acquired.",
	})

	LocksSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_slot_locks_swept_total",
		Help: "Expired slot locks removed by the sweeper.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
