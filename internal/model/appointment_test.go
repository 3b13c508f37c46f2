package model

import (
	"testing"
	"time"
)

func TestCanTransition_HappyPath(t *testing.T) {
	steps := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusCheckedIn},
		{StatusCheckedIn, StatusInProgress},
		{StatusInProgress, StatusCompleted},
	}
	for _, s := range steps {
		if !CanTransition(s.from, s.to) {
			t.Fatalf("expected %s -> %s to be allowed", s.from, s.to)
		}
	}
}

func TestCanTransition_TerminalStatesAbsorb(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !terminal.Terminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, to := range []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow} {
			if CanTransition(terminal, to) {
				t.Fatalf("terminal %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestCanTransition_CancelAndNoShowFromIntermediates(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress} {
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", from)
		}
		if !CanTransition(from, StatusNoShow) {
			t.Fatalf("expected %s -> no_show to be allowed", from)
		}
	}
	if CanTransition(StatusPending, StatusCheckedIn) {
		t.Fatal("pending must not skip straight to checked_in")
	}
}

func TestParseMinute(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"garbage", 0, false},
	}
	for _, c := range cases {
		got, err := ParseMinute(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseMinute(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseMinute(%q) should fail", c.in)
		}
	}
	if got := FormatMinute(630); got != "10:30" {
		t.Fatalf("FormatMinute(630) = %q", got)
	}
}

func TestAppointmentStartAt(t *testing.T) {
	loc, err := time.LoadLocation("Etc/GMT-3")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	a := Appointment{
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		StartMinute: 600,
		EndMinute:   630,
	}
	start := a.StartAt(loc)
	if start.Hour() != 10 || start.Minute() != 0 {
		t.Fatalf("expected 10:00 local, got %s", start)
	}
}

func TestSlotLockExpired(t *testing.T) {
	now := time.Now()
	l := SlotLock{ExpiresAt: now.Add(time.Minute)}
	if l.Expired(now) {
		t.Fatal("lock should still be live")
	}
	if !l.Expired(now.Add(time.Minute)) {
		t.Fatal("lock should expire exactly at ExpiresAt")
	}
}
