package availability

import (
	"testing"

	"github.com/salonloop/scheduling/internal/model"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                   string
		aStart, aEnd           int
		bStart, bEnd           int
		want                   bool
	}{
		{"identical", 600, 630, 600, 630, true},
		{"partial", 600, 630, 615, 645, true},
		{"contained", 600, 700, 620, 640, true},
		{"back_to_back_after", 600, 630, 630, 660, false},
		{"back_to_back_before", 630, 660, 600, 630, false},
		{"disjoint", 600, 630, 700, 730, false},
		{"one_minute_overlap", 600, 631, 630, 660, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
				t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, want %v", c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd); got != c.want {
				t.Fatalf("Overlaps not symmetric for %s", c.name)
			}
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	busy := []model.Window{{Start: 600, End: 630}, {Start: 720, End: 780}}
	if !OverlapsAny(615, 645, busy) {
		t.Fatal("expected overlap with first busy window")
	}
	if OverlapsAny(630, 720, busy) {
		t.Fatal("interval exactly between busy windows must be free")
	}
	if OverlapsAny(0, 60, nil) {
		t.Fatal("no busy windows means no overlap")
	}
}
