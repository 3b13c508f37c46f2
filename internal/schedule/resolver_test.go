package schedule

import (
	"testing"

	"github.com/salonloop/scheduling/internal/model"
)

const monday = 1

func org() model.Organization {
	return model.Organization{OpenMinute: 540, CloseMinute: 1080} // 09:00-18:00
}

func weeklyMonday(start, end int) []model.ScheduleEntry {
	return []model.ScheduleEntry{
		{Weekday: monday, Available: true, StartMinute: start, EndMinute: end},
	}
}

func TestResolveWindows_WeekdayBase(t *testing.T) {
	got := resolveWindows(org(), weeklyMonday(600, 1140), nil, nil, monday)
	if len(got) != 1 || got[0] != (model.Window{Start: 600, End: 1140}) {
		t.Fatalf("expected [600,1140), got %+v", got)
	}
}

func TestResolveWindows_AbsentWeekdayMeansOff(t *testing.T) {
	// Schedule exists but has no Tuesday entry: the day is off, no fallback.
	got := resolveWindows(org(), weeklyMonday(600, 1140), nil, nil, 2)
	if len(got) != 0 {
		t.Fatalf("expected no windows, got %+v", got)
	}
}

func TestResolveWindows_NoScheduleFallsBackToOrgHours(t *testing.T) {
	got := resolveWindows(org(), nil, nil, nil, monday)
	if len(got) != 1 || got[0] != (model.Window{Start: 540, End: 1080}) {
		t.Fatalf("expected org hours fallback, got %+v", got)
	}
}

func TestResolveWindows_OverrideReplacesBase(t *testing.T) {
	ovr := &model.ScheduleOverride{StartMinute: 720, EndMinute: 960}
	got := resolveWindows(org(), weeklyMonday(540, 1080), ovr, nil, monday)
	if len(got) != 1 || got[0] != (model.Window{Start: 720, End: 960}) {
		t.Fatalf("expected override window, got %+v", got)
	}
}

func TestResolveWindows_ClosedOverrideClosesDay(t *testing.T) {
	ovr := &model.ScheduleOverride{Closed: true}
	got := resolveWindows(org(), weeklyMonday(540, 1080), ovr, nil, monday)
	if len(got) != 0 {
		t.Fatalf("expected closed day, got %+v", got)
	}
}

func TestResolveWindows_OvertimeUnions(t *testing.T) {
	overtime := []model.OvertimeWindow{{StartMinute: 1080, EndMinute: 1200}}
	got := resolveWindows(org(), weeklyMonday(540, 1080), nil, overtime, monday)
	// Overtime touches the base window end, so the two merge.
	if len(got) != 1 || got[0] != (model.Window{Start: 540, End: 1200}) {
		t.Fatalf("expected merged [540,1200), got %+v", got)
	}
}

func TestResolveWindows_DisjointOvertime(t *testing.T) {
	overtime := []model.OvertimeWindow{{StartMinute: 1260, EndMinute: 1320}}
	got := resolveWindows(org(), weeklyMonday(540, 1080), nil, overtime, monday)
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %+v", got)
	}
	if got[1] != (model.Window{Start: 1260, End: 1320}) {
		t.Fatalf("expected overtime window second, got %+v", got[1])
	}
}

func TestResolveWindows_OvertimeOnClosedDayStillCounts(t *testing.T) {
	ovr := &model.ScheduleOverride{Closed: true}
	overtime := []model.OvertimeWindow{{StartMinute: 600, EndMinute: 720}}
	got := resolveWindows(org(), weeklyMonday(540, 1080), ovr, overtime, monday)
	if len(got) != 1 || got[0] != (model.Window{Start: 600, End: 720}) {
		t.Fatalf("expected overtime-only window, got %+v", got)
	}
}

func TestMergeWindows(t *testing.T) {
	in := []model.Window{
		{Start: 900, End: 960},
		{Start: 540, End: 600},
		{Start: 580, End: 700},
	}
	got := mergeWindows(in)
	want := []model.Window{{Start: 540, End: 700}, {Start: 900, End: 960}}
	if len(got) != len(want) {
		t.Fatalf("expected %d windows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
