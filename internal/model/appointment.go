package model

import "time"

// Status is the appointment lifecycle state. completed, cancelled and
// no_show are terminal; terminal appointments never count as conflicts.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether the status machine allows from → to.
// The time-based no_show guard is enforced separately by the booking
// service since it needs the appointment's start instant.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ServiceLine is the priced snapshot of one booked service. Snapshotting
// keeps historical appointments stable when the catalog changes.
type ServiceLine struct {
	ServiceID       string `json:"service_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

type Appointment struct {
	ID               string
	OrganizationID   string
	StaffID          string
	CustomerID       string
	Date             time.Time // civil date, midnight in the org timezone
	StartMinute      int
	EndMinute        int
	Status           Status
	Services         []ServiceLine
	ConfirmationCode string
	TotalCents       int64
	CancelledAt      *time.Time
	CancelReason     string
	CancelledBy      string
	CreatedAt        time.Time
}

// StartAt returns the appointment's start instant in loc.
func (a Appointment) StartAt(loc *time.Location) time.Time {
	return AtDate(a.Date, a.StartMinute, loc)
}

func (a Appointment) Window() Window {
	return Window{Start: a.StartMinute, End: a.EndMinute}
}

func (a Appointment) ServiceIDs() []string {
	ids := make([]string, 0, len(a.Services))
	for _, s := range a.Services {
		ids = append(ids, s.ServiceID)
	}
	return ids
}
