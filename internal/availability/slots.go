package availability

import "github.com/salonloop/scheduling/internal/model"

// SlotStarts generates candidate start minutes on the step grid inside the
// given working windows, keeping only those where a booking of duration
// minutes fits the window and avoids every busy interval.
//
// Candidates sit on absolute multiples of step (the drag-grid: a window
// opening at 09:07 yields 09:15 first, not 09:07). Windows are assumed
// merged and ascending, so the output is ascending too.
func SlotStarts(windows []model.Window, duration, step int, busy []model.Window) []int {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var starts []int
	for _, win := range windows {
		first := ((win.Start + step - 1) / step) * step
		for s := first; s+duration <= win.End; s += step {
			if OverlapsAny(s, s+duration, busy) {
				continue
			}
			starts = append(starts, s)
		}
	}
	return starts
}
