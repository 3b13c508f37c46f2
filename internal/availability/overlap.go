// Package availability computes bookable slots and owns the single
// overlap predicate every scheduling path shares.
package availability

import "github.com/salonloop/scheduling/internal/model"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not conflict.
//
// Every conflict decision in the service goes through this predicate so
// the availability listing, lock acquisition, and booking commit can never
// disagree about what "free" means.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// OverlapsAny reports whether [start, end) intersects any busy window.
func OverlapsAny(start, end int, busy []model.Window) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
