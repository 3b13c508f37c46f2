// Package schedule resolves a staff member's effective working windows for
// a date from their weekly schedule, date overrides, overtime, and the
// organization's default business hours.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/salonloop/scheduling/internal/model"
)

// Store is the slice of storage the resolver needs.
type Store interface {
	WeeklySchedule(ctx context.Context, staffID string) ([]model.ScheduleEntry, error)
	OverrideFor(ctx context.Context, staffID string, date time.Time) (model.ScheduleOverride, bool, error)
	OvertimeFor(ctx context.Context, staffID string, date time.Time) ([]model.OvertimeWindow, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// WorkingWindows returns the merged, ascending working windows for a
// staff member on a civil date. An empty result means the staff member is
// off that day; it is never an error.
func (r *Resolver) WorkingWindows(ctx context.Context, org model.Organization, staffID string, date time.Time) ([]model.Window, error) {
	weekly, err := r.store.WeeklySchedule(ctx, staffID)
	if err != nil {
		return nil, err
	}

	var override *model.ScheduleOverride
	if ovr, ok, err := r.store.OverrideFor(ctx, staffID, date); err != nil {
		return nil, err
	} else if ok {
		override = &ovr
	}

	overtime, err := r.store.OvertimeFor(ctx, staffID, date)
	if err != nil {
		return nil, err
	}

	return resolveWindows(org, weekly, override, overtime, int(date.Weekday())), nil
}

// resolveWindows applies the precedence rules: the weekly entry for the
// weekday is the base (absent entry = off); an exact-date override fully
// replaces the base, including closing the day; overtime windows are
// unioned on top; the org's default hours apply only when the staff member
// has no weekly schedule at all.
func resolveWindows(org model.Organization, weekly []model.ScheduleEntry, override *model.ScheduleOverride, overtime []model.OvertimeWindow, weekday int) []model.Window {
	var windows []model.Window

	base, ok := baseWindow(org, weekly, weekday)
	if override != nil {
		base, ok = model.Window{Start: override.StartMinute, End: override.EndMinute}, !override.Closed
	}
	if ok && model.ValidInterval(base.Start, base.End) {
		windows = append(windows, base)
	}

	for _, ot := range overtime {
		if model.ValidInterval(ot.StartMinute, ot.EndMinute) {
			windows = append(windows, model.Window{Start: ot.StartMinute, End: ot.EndMinute})
		}
	}

	return mergeWindows(windows)
}

func baseWindow(org model.Organization, weekly []model.ScheduleEntry, weekday int) (model.Window, bool) {
	if len(weekly) == 0 {
		// No schedule configured at all: fall back to org business hours.
		if model.ValidInterval(org.OpenMinute, org.CloseMinute) {
			return model.Window{Start: org.OpenMinute, End: org.CloseMinute}, true
		}
		return model.Window{}, false
	}
	for _, e := range weekly {
		if e.Weekday == weekday {
			if !e.Available {
				return model.Window{}, false
			}
			return model.Window{Start: e.StartMinute, End: e.EndMinute}, true
		}
	}
	return model.Window{}, false
}

// mergeWindows sorts and coalesces overlapping or touching windows.
func mergeWindows(windows []model.Window) []model.Window {
	if len(windows) <= 1 {
		return windows
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
