package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/salonloop/scheduling/internal/model"
)

func orgWithCutoff(minutes int) model.Organization {
	return model.Organization{CancelCutoffMinutes: minutes}
}

func TestModifiableCutoff(t *testing.T) {
	loc, err := time.LoadLocation("Etc/GMT-3")
	if err != nil {
		t.Fatal(err)
	}
	startAt := time.Date(2026, 3, 14, 15, 0, 0, 0, loc)
	cutoff := 120 * time.Minute

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"121 minutes before start", startAt.Add(-121 * time.Minute), true},
		{"exactly at the cutoff", startAt.Add(-120 * time.Minute), false},
		{"119 minutes before start", startAt.Add(-119 * time.Minute), false},
		{"after start", startAt.Add(30 * time.Minute), false},
	}
	for _, c := range cases {
		if got := modifiable(startAt, c.now, cutoff); got != c.want {
			t.Errorf("%s: modifiable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNoShowAllowedOnlyFromStart(t *testing.T) {
	loc, err := time.LoadLocation("Etc/GMT-3")
	if err != nil {
		t.Fatal(err)
	}
	startAt := time.Date(2026, 3, 14, 15, 0, 0, 0, loc)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"a minute before start", startAt.Add(-time.Minute), false},
		{"exactly at start", startAt, true},
		{"a minute after start", startAt.Add(time.Minute), true},
	}
	for _, c := range cases {
		if got := noShowAllowed(startAt, c.now); got != c.want {
			t.Errorf("%s: noShowAllowed = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCutoffDefaults(t *testing.T) {
	if got := cutoff(orgWithCutoff(0)); got != 120*time.Minute {
		t.Fatalf("default cutoff = %v, want 2h", got)
	}
	if got := cutoff(orgWithCutoff(45)); got != 45*time.Minute {
		t.Fatalf("cutoff = %v, want 45m", got)
	}
}

func TestNewConfirmationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := newConfirmationCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != codeLength {
			t.Fatalf("code %q: length %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 100 {
		t.Fatalf("got %d distinct codes out of 100", len(seen))
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"+7 (900) 123-45-67", "+79001234567"},
		{"+79001234567", "+79001234567"},
		{"8 900 123 45 67", "89001234567"},
		{"79001234567", "79001234567"},
	}
	for _, c := range cases {
		if got := normalizePhone(c.in); got != c.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if normalizePhone("+7 900") == normalizePhone("7900") {
		t.Error("leading + must be significant")
	}
}
