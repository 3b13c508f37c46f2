package model

import (
	"fmt"
	"time"
)

// MinutesPerDay bounds every minute-of-day offset: valid times live in
// [0, 1440), intervals are half-open [start, end).
const MinutesPerDay = 24 * 60

// ParseMinute converts an "HH:MM" clock string to a minute-of-day offset.
func ParseMinute(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	return h*60 + m, nil
}

// FormatMinute renders a minute-of-day offset as "HH:MM".
func FormatMinute(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ValidInterval reports whether [start, end) is a well-formed same-day interval.
func ValidInterval(start, end int) bool {
	return start >= 0 && end <= MinutesPerDay && start < end
}

// Window is a half-open [Start, End) interval in minutes from midnight.
type Window struct {
	Start int
	End   int
}

// AtDate anchors a minute offset onto a civil date in loc.
func AtDate(date time.Time, minute int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minute, 0, 0, loc)
}

// SameDate reports whether the instant falls on the given civil date when
// viewed in loc. The date's own Y/M/D fields are taken verbatim.
func SameDate(date, instant time.Time, loc *time.Location) bool {
	y, m, d := date.Date()
	iy, im, id := instant.In(loc).Date()
	return y == iy && m == im && d == id
}

// DateBefore reports whether the civil date is strictly before the
// instant's civil date in loc.
func DateBefore(date, instant time.Time, loc *time.Location) bool {
	y, m, d := date.Date()
	iy, im, id := instant.In(loc).Date()
	a := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	b := time.Date(iy, im, id, 0, 0, 0, 0, time.UTC)
	return a.Before(b)
}
