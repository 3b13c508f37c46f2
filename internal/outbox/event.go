// Package outbox persists domain events in the booking transaction and
// relays them to Kafka, so an event is published iff its transaction
// committed.
package outbox

// Topic names double as event types. One event per topic.
const (
	EventAppointmentBooked        = "scheduling.appointment.booked.v1"
	EventAppointmentCancelled     = "scheduling.appointment.cancelled.v1"
	EventAppointmentRescheduled   = "scheduling.appointment.rescheduled.v1"
	EventAppointmentStatusChanged = "scheduling.appointment.status_changed.v1"
)

// Event is the envelope written to the outbox table inside the caller's
// transaction.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
