package model

import "time"

// ScheduleEntry is a staff member's default hours for one weekday
// (time.Weekday numbering, Sunday = 0). A weekday with no entry means the
// staff member is off that day.
type ScheduleEntry struct {
	StaffID     string
	Weekday     int
	Available   bool
	StartMinute int
	EndMinute   int
}

// ScheduleOverride replaces the weekly entry for one exact date: vacation
// (Closed) or special hours. It wins over the weekly schedule entirely.
type ScheduleOverride struct {
	StaffID     string
	Date        time.Time
	Closed      bool
	StartMinute int
	EndMinute   int
}

// OvertimeWindow is additive availability on top of the resolved base
// hours for a date, e.g. staying late for a regular.
type OvertimeWindow struct {
	StaffID     string
	Date        time.Time
	StartMinute int
	EndMinute   int
}
