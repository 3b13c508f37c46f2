package availability

import (
	"context"
	"sort"
	"time"

	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
)

// Settings loads per-organization scheduling configuration.
type Settings interface {
	Organization(ctx context.Context, orgID string) (model.Organization, error)
}

// Catalog resolves the requested services to priced duration lines.
type Catalog interface {
	ServiceLines(ctx context.Context, orgID string, serviceIDs []string) ([]model.ServiceLine, error)
}

// Directory answers staff eligibility questions.
type Directory interface {
	EligibleStaff(ctx context.Context, orgID string, serviceIDs []string) ([]model.Staff, error)
	IsEligible(ctx context.Context, orgID, staffID string, serviceIDs []string) (bool, error)
}

// WindowResolver yields a staff member's working windows for a date.
type WindowResolver interface {
	WorkingWindows(ctx context.Context, org model.Organization, staffID string, date time.Time) ([]model.Window, error)
}

// BusySource lists the intervals already claimed for a staff/date: every
// non-terminal appointment plus every other session's unexpired slot lock.
type BusySource interface {
	BusyWindows(ctx context.Context, orgID, staffID string, date time.Time, excludeSessionID string, now time.Time) ([]model.Window, error)
}

// Slot is one bookable interval. StaffID is set when the caller asked for
// a specific staff member; otherwise CandidateStaffIDs lists everyone who
// could take the slot, and the caller picks one at lock-acquire time.
type Slot struct {
	StartMinute       int
	EndMinute         int
	StaffID           string
	CandidateStaffIDs []string
}

type Query struct {
	OrganizationID string
	Date           time.Time
	ServiceIDs     []string
	StaffID        string // optional: empty means any eligible staff
	SessionID      string // optional: the caller's own lock does not block
}

type RangeQuery struct {
	OrganizationID string
	From           time.Time
	To             time.Time
	ServiceIDs     []string
	StaffID        string
	SessionID      string
}

// DateSummary is the per-date availability preview for calendar views.
type DateSummary struct {
	Date            time.Time
	HasAvailability bool
	SlotCount       int
}

const (
	defaultStep = 15

	// maxRangeDays bounds AvailableDates so a wide range cannot turn one
	// request into thousands of per-staff window resolutions.
	maxRangeDays = 62
)

type Computer struct {
	settings Settings
	catalog  Catalog
	staff    Directory
	windows  WindowResolver
	busy     BusySource
	now      func() time.Time
}

func NewComputer(settings Settings, catalog Catalog, staff Directory, windows WindowResolver, busy BusySource) *Computer {
	return &Computer{
		settings: settings,
		catalog:  catalog,
		staff:    staff,
		windows:  windows,
		busy:     busy,
		now:      time.Now,
	}
}

// ListSlots returns every bookable slot for the date in ascending start
// order. The computation is deterministic for identical inputs: the
// reschedule flow re-runs it and must see the same answer.
func (c *Computer) ListSlots(ctx context.Context, q Query) ([]Slot, error) {
	if len(q.ServiceIDs) == 0 {
		return nil, schederr.ErrValidation
	}

	org, err := c.settings.Organization(ctx, q.OrganizationID)
	if err != nil {
		return nil, err
	}
	loc := org.Location(nil)
	now := c.now()

	// Past dates are rejected client-side too; duplicated here so a crafted
	// request cannot book yesterday.
	if model.DateBefore(q.Date, now, loc) {
		return []Slot{}, nil
	}

	lines, err := c.catalog.ServiceLines(ctx, q.OrganizationID, q.ServiceIDs)
	if err != nil {
		return nil, err
	}
	duration := totalDuration(lines)
	if duration <= 0 {
		return nil, schederr.ErrValidation
	}

	staffIDs, err := c.resolveStaff(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(staffIDs) == 0 {
		return []Slot{}, nil
	}

	step := org.SlotStepMinutes
	if step <= 0 {
		step = defaultStep
	}

	// Slots starting earlier today than the current time are gone.
	minStart := 0
	if model.SameDate(q.Date, now, loc) {
		local := now.In(loc)
		minStart = local.Hour()*60 + local.Minute()
	}

	candidates := map[int][]string{}
	for _, staffID := range staffIDs {
		windows, err := c.windows.WorkingWindows(ctx, org, staffID, q.Date)
		if err != nil {
			return nil, err
		}
		if len(windows) == 0 {
			continue
		}
		busy, err := c.busy.BusyWindows(ctx, q.OrganizationID, staffID, q.Date, q.SessionID, now)
		if err != nil {
			return nil, err
		}
		for _, start := range SlotStarts(windows, duration, step, busy) {
			if start < minStart {
				continue
			}
			candidates[start] = append(candidates[start], staffID)
		}
	}

	slots := make([]Slot, 0, len(candidates))
	for start, ids := range candidates {
		slot := Slot{StartMinute: start, EndMinute: start + duration}
		if q.StaffID != "" {
			slot.StaffID = q.StaffID
		} else {
			sort.Strings(ids)
			slot.CandidateStaffIDs = ids
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartMinute < slots[j].StartMinute })
	return slots, nil
}

// AvailableDates previews availability over an inclusive date range.
func (c *Computer) AvailableDates(ctx context.Context, q RangeQuery) ([]DateSummary, error) {
	if q.To.Before(q.From) {
		return nil, schederr.ErrValidation
	}
	days := int(q.To.Sub(q.From).Hours()/24) + 1
	if days > maxRangeDays {
		return nil, schederr.ErrValidation
	}

	summaries := make([]DateSummary, 0, days)
	for date := q.From; !date.After(q.To); date = date.AddDate(0, 0, 1) {
		slots, err := c.ListSlots(ctx, Query{
			OrganizationID: q.OrganizationID,
			Date:           date,
			ServiceIDs:     q.ServiceIDs,
			StaffID:        q.StaffID,
			SessionID:      q.SessionID,
		})
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, DateSummary{
			Date:            date,
			HasAvailability: len(slots) > 0,
			SlotCount:       len(slots),
		})
	}
	return summaries, nil
}

func (c *Computer) resolveStaff(ctx context.Context, q Query) ([]string, error) {
	if q.StaffID != "" {
		ok, err := c.staff.IsEligible(ctx, q.OrganizationID, q.StaffID, q.ServiceIDs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, schederr.ErrInvalidStaffForServices
		}
		return []string{q.StaffID}, nil
	}

	staff, err := c.staff.EligibleStaff(ctx, q.OrganizationID, q.ServiceIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func totalDuration(lines []model.ServiceLine) int {
	total := 0
	for _, l := range lines {
		total += l.DurationMinutes
	}
	return total
}
