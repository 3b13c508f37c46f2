package availability

import (
	"testing"

	"github.com/salonloop/scheduling/internal/model"
)

func TestSlotStarts_ExcludesOverlapsIncludesAdjacent(t *testing.T) {
	// Working 09:00-18:00, existing appointment 10:00-10:30, 30 min
	// service on a 15 min grid: 09:45 would end 10:15 (conflict), 10:30
	// starts exactly when the appointment ends (free).
	windows := []model.Window{{Start: 540, End: 1080}}
	busy := []model.Window{{Start: 600, End: 630}}

	starts := SlotStarts(windows, 30, 15, busy)

	set := map[int]bool{}
	for _, s := range starts {
		set[s] = true
	}
	if set[585] {
		t.Fatal("09:45 overlaps the 10:00 appointment and must be excluded")
	}
	if set[600] || set[615] {
		t.Fatal("slots inside the appointment must be excluded")
	}
	if !set[630] {
		t.Fatal("10:30 is back-to-back with the appointment and must be included")
	}
	if !set[540] || !set[570] {
		t.Fatal("expected the morning slots before the appointment")
	}
	if set[1065] {
		t.Fatal("17:45 would run past closing and must be excluded")
	}
	if !set[1050] {
		t.Fatal("17:30 is the last slot that fits and must be included")
	}
}

func TestSlotStarts_SnapsToGrid(t *testing.T) {
	// Window opens at 09:07; the first grid candidate is 09:15.
	starts := SlotStarts([]model.Window{{Start: 547, End: 600}}, 30, 15, nil)
	if len(starts) != 2 || starts[0] != 555 || starts[1] != 570 {
		t.Fatalf("expected [555 570], got %v", starts)
	}
}

func TestSlotStarts_DurationMustFitWindow(t *testing.T) {
	starts := SlotStarts([]model.Window{{Start: 540, End: 570}}, 45, 15, nil)
	if len(starts) != 0 {
		t.Fatalf("45 min cannot fit a 30 min window, got %v", starts)
	}
}

func TestSlotStarts_MultipleWindowsAscending(t *testing.T) {
	windows := []model.Window{{Start: 540, End: 600}, {Start: 900, End: 960}}
	starts := SlotStarts(windows, 30, 30, nil)
	want := []int{540, 570, 900, 930}
	if len(starts) != len(want) {
		t.Fatalf("expected %v, got %v", want, starts)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, starts)
		}
	}
}

func TestSlotStarts_InvalidInputs(t *testing.T) {
	if got := SlotStarts([]model.Window{{Start: 540, End: 600}}, 0, 15, nil); got != nil {
		t.Fatalf("zero duration must yield nothing, got %v", got)
	}
	if got := SlotStarts([]model.Window{{Start: 540, End: 600}}, 30, 0, nil); got != nil {
		t.Fatalf("zero step must yield nothing, got %v", got)
	}
}
