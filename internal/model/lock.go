package model

import "time"

// SlotLock is a short-lived reservation of a staff/time window taken while
// a customer completes the booking form. A session holds at most one lock;
// re-acquiring replaces it. Expired locks are invisible to every read path
// whether or not the sweeper has removed the row yet.
type SlotLock struct {
	ID             string
	OrganizationID string
	StaffID        string
	Date           time.Time
	StartMinute    int
	EndMinute      int
	SessionID      string
	ExpiresAt      time.Time
}

func (l SlotLock) Window() Window {
	return Window{Start: l.StartMinute, End: l.EndMinute}
}

func (l SlotLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
