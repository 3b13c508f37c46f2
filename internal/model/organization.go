package model

import "time"

// Organization carries the per-tenant scheduling knobs. Service-level env
// defaults fill these at row-creation time; existing rows keep their values.
type Organization struct {
	ID                  string
	Name                string
	Timezone            string
	SlotStepMinutes     int
	LockTTLMinutes      int
	CancelCutoffMinutes int
	AutoConfirm         bool
	OpenMinute          int // default business hours, used only when a
	CloseMinute         int // staff member has no weekly schedule rows
}

// Location resolves the org's IANA timezone, falling back to fallback and
// then UTC. Civil dates and minute offsets are interpreted in this zone.
func (o Organization) Location(fallback *time.Location) *time.Location {
	if o.Timezone != "" {
		if loc, err := time.LoadLocation(o.Timezone); err == nil {
			return loc
		}
	}
	if fallback != nil {
		return fallback
	}
	return time.UTC
}

type Staff struct {
	ID             string
	OrganizationID string
	Name           string
	Phone          string
	Active         bool
}

type Customer struct {
	ID             string
	OrganizationID string
	Name           string
	Phone          string
}
