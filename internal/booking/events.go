package booking

import (
	"encoding/json"
	"time"

	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/outbox"
)

const aggregateAppointment = "appointment"

type slotRef struct {
	StaffID   string `json:"staff_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func slotOf(staffID string, date time.Time, start, end int) slotRef {
	return slotRef{
		StaffID:   staffID,
		Date:      date.Format("2006-01-02"),
		StartTime: model.FormatMinute(start),
		EndTime:   model.FormatMinute(end),
	}
}

func bookedEvent(a model.Appointment) (outbox.Event, error) {
	payload, err := json.Marshal(struct {
		AppointmentID    string              `json:"appointment_id"`
		OrganizationID   string              `json:"organization_id"`
		CustomerID       string              `json:"customer_id"`
		Slot             slotRef             `json:"slot"`
		Status           string              `json:"status"`
		Services         []model.ServiceLine `json:"services"`
		ConfirmationCode string              `json:"confirmation_code"`
		TotalCents       int64               `json:"total_cents"`
	}{a.ID, a.OrganizationID, a.CustomerID,
		slotOf(a.StaffID, a.Date, a.StartMinute, a.EndMinute),
		string(a.Status), a.Services, a.ConfirmationCode, a.TotalCents})
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: aggregateAppointment,
		AggregateID:   a.ID,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	}, nil
}

func cancelledEvent(a model.Appointment, at time.Time, reason, by string) (outbox.Event, error) {
	payload, err := json.Marshal(struct {
		AppointmentID  string    `json:"appointment_id"`
		OrganizationID string    `json:"organization_id"`
		CustomerID     string    `json:"customer_id"`
		Slot           slotRef   `json:"slot"`
		CancelledAt    time.Time `json:"cancelled_at"`
		CancelledBy    string    `json:"cancelled_by"`
		Reason         string    `json:"reason,omitempty"`
	}{a.ID, a.OrganizationID, a.CustomerID,
		slotOf(a.StaffID, a.Date, a.StartMinute, a.EndMinute), at, by, reason})
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: aggregateAppointment,
		AggregateID:   a.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       payload,
	}, nil
}

func rescheduledEvent(a model.Appointment, old slotRef) (outbox.Event, error) {
	payload, err := json.Marshal(struct {
		AppointmentID  string  `json:"appointment_id"`
		OrganizationID string  `json:"organization_id"`
		CustomerID     string  `json:"customer_id"`
		Old            slotRef `json:"old"`
		New            slotRef `json:"new"`
	}{a.ID, a.OrganizationID, a.CustomerID, old,
		slotOf(a.StaffID, a.Date, a.StartMinute, a.EndMinute)})
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: aggregateAppointment,
		AggregateID:   a.ID,
		EventType:     outbox.EventAppointmentRescheduled,
		Payload:       payload,
	}, nil
}

func statusChangedEvent(a model.Appointment, from, to model.Status) (outbox.Event, error) {
	payload, err := json.Marshal(struct {
		AppointmentID  string `json:"appointment_id"`
		OrganizationID string `json:"organization_id"`
		CustomerID     string `json:"customer_id"`
		From           string `json:"from"`
		To             string `json:"to"`
	}{a.ID, a.OrganizationID, a.CustomerID, string(from), string(to)})
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		AggregateType: aggregateAppointment,
		AggregateID:   a.ID,
		EventType:     outbox.EventAppointmentStatusChanged,
		Payload:       payload,
	}, nil
}
