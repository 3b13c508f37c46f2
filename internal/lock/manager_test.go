package lock

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
)

func TestWindowContains(t *testing.T) {
	windows := []model.Window{{Start: 540, End: 720}, {Start: 780, End: 1080}}

	cases := []struct {
		start, end int
		want       bool
	}{
		{540, 600, true},
		{660, 720, true},
		{700, 760, false}, // straddles the break
		{720, 780, false},
		{780, 1080, true},
		{1050, 1090, false},
	}
	for _, c := range cases {
		if got := windowContains(windows, c.start, c.end); got != c.want {
			t.Errorf("windowContains(%d, %d) = %v, want %v", c.start, c.end, got, c.want)
		}
	}
}

func TestAcquireRejectsIncompleteRequest(t *testing.T) {
	m := NewManager(nil, nil, nil, nil, nil, nil, nil, slog.Default())
	m.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	reqs := []AcquireRequest{
		{OrganizationID: "org", StaffID: "anna", ServiceIDs: []string{"cut"}},
		{OrganizationID: "org", SessionID: "s1", ServiceIDs: []string{"cut"}},
		{OrganizationID: "org", StaffID: "anna", SessionID: "s1"},
	}
	for i, req := range reqs {
		if _, err := m.Acquire(context.Background(), req); !errors.Is(err, schederr.ErrValidation) {
			t.Errorf("case %d: got %v, want validation error", i, err)
		}
	}
}
