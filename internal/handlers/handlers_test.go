package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/salonloop/scheduling/internal/availability"
	"github.com/salonloop/scheduling/internal/booking"
	"github.com/salonloop/scheduling/internal/lock"
	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
)

type fakeComputer struct {
	slots []availability.Slot
	dates []availability.DateSummary
	err   error
}

func (f *fakeComputer) ListSlots(context.Context, availability.Query) ([]availability.Slot, error) {
	return f.slots, f.err
}

func (f *fakeComputer) AvailableDates(context.Context, availability.RangeQuery) ([]availability.DateSummary, error) {
	return f.dates, f.err
}

type fakeBooker struct {
	appt model.Appointment
	err  error
}

func (f *fakeBooker) Book(context.Context, booking.BookRequest) (model.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeBooker) LookupByCode(context.Context, string, string, string) (model.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeBooker) CancelByCode(context.Context, string, string, string, string) error {
	return f.err
}

func (f *fakeBooker) RescheduleByCode(context.Context, booking.CustomerRescheduleRequest) (model.Appointment, error) {
	return f.appt, f.err
}

type fakeLocker struct {
	lock model.SlotLock
	err  error
}

func (f *fakeLocker) Acquire(context.Context, lock.AcquireRequest) (model.SlotLock, error) {
	return f.lock, f.err
}

func (f *fakeLocker) Release(context.Context, string, string) error {
	return f.err
}

type fakeScheduler struct {
	appt model.Appointment
	list []model.Appointment
	err  error
}

func (f *fakeScheduler) Reschedule(context.Context, booking.RescheduleRequest) (model.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Cancel(context.Context, booking.CancelRequest) error {
	return f.err
}

func (f *fakeScheduler) UpdateStatus(context.Context, string, string, model.Status) (model.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) Get(context.Context, string, string) (model.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeScheduler) ListByDate(context.Context, string, time.Time, string, model.Status) ([]model.Appointment, error) {
	return f.list, f.err
}

func testLogger() *slog.Logger { return slog.Default() }

func TestSlotsReturnsGrid(t *testing.T) {
	h := NewAvailabilityHandler(&fakeComputer{slots: []availability.Slot{
		{StartMinute: 600, EndMinute: 645, CandidateStaffIDs: []string{"anna", "mira"}},
		{StartMinute: 645, EndMinute: 690, CandidateStaffIDs: []string{"anna"}},
	}}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?org_id=org1&date=2026-03-14&service_ids=cut,color", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp slotsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(resp.Slots))
	}
	if resp.Slots[0].StartTime != "10:00" || resp.Slots[0].EndTime != "10:45" {
		t.Errorf("first slot = %s-%s, want 10:00-10:45", resp.Slots[0].StartTime, resp.Slots[0].EndTime)
	}
	if len(resp.Slots[0].CandidateStaffIDs) != 2 {
		t.Errorf("first slot candidates = %v", resp.Slots[0].CandidateStaffIDs)
	}
}

func TestSlotsRequiresParams(t *testing.T) {
	h := NewAvailabilityHandler(&fakeComputer{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?org_id=org1&date=2026-03-14", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBookConflictMapsTo409(t *testing.T) {
	h := NewBookingHandler(&fakeBooker{err: schederr.ErrAvailabilityConflict}, testLogger())

	body := `{"org_id":"org1","staff_id":"anna","date":"2026-03-14","start_time":"10:00",` +
		`"service_ids":["cut"],"customer_name":"Ada","customer_phone":"+79001234567"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp errorBody
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "availability_conflict" {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}

func TestBookCreated(t *testing.T) {
	appt := model.Appointment{
		ID:               "a1",
		StaffID:          "anna",
		Date:             time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartMinute:      600,
		EndMinute:        645,
		Status:           model.StatusConfirmed,
		ConfirmationCode: "QX4MN2PR",
	}
	h := NewBookingHandler(&fakeBooker{appt: appt}, testLogger())

	body := `{"org_id":"org1","staff_id":"anna","date":"2026-03-14","start_time":"10:00",` +
		`"service_ids":["cut"],"customer_name":"Ada","customer_phone":"+79001234567"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp appointmentView
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ConfirmationCode != "QX4MN2PR" || resp.StartTime != "10:00" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCustomerCancelInsideCutoffMapsTo422(t *testing.T) {
	h := NewBookingHandler(&fakeBooker{err: schederr.ErrOutsideModificationWindow}, testLogger())

	body := `{"org_id":"org1","code":"QX4MN2PR","phone":"+79001234567"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/appointments/cancel", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestLookupWrongPhoneMapsTo404(t *testing.T) {
	h := NewBookingHandler(&fakeBooker{err: schederr.ErrInvalidConfirmationOrPhone}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/appointments/lookup?org_id=org1&code=QX4MN2PR&phone=%2B70000000000", nil)
	rec := httptest.NewRecorder()
	h.Lookup(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAcquireLockCreated(t *testing.T) {
	expires := time.Date(2026, 3, 14, 9, 58, 0, 0, time.UTC)
	h := NewLockHandler(&fakeLocker{lock: model.SlotLock{
		ID:          "l1",
		StaffID:     "anna",
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartMinute: 600,
		EndMinute:   645,
		ExpiresAt:   expires,
	}}, testLogger())

	body := `{"org_id":"org1","staff_id":"anna","date":"2026-03-14","start_time":"10:00",` +
		`"service_ids":["cut"],"session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/locks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Acquire(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp acquireLockResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.LockID != "l1" || resp.ExpiresAt != "2026-03-14T09:58:00Z" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAcquireLockTakenMapsTo409(t *testing.T) {
	h := NewLockHandler(&fakeLocker{err: schederr.ErrAvailabilityConflict}, testLogger())

	body := `{"org_id":"org1","staff_id":"anna","date":"2026-03-14","start_time":"10:00",` +
		`"service_ids":["cut"],"session_id":"s2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/locks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Acquire(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestStatusInvalidTransitionMapsTo409(t *testing.T) {
	h := NewAdminHandler(&fakeScheduler{err: schederr.ErrInvalidStatusTransition}, testLogger())

	body := `{"org_id":"org1","appointment_id":"a1","status":"completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewBookingHandler(&fakeBooker{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/book", nil)
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestAdminListByDate(t *testing.T) {
	h := NewAdminHandler(&fakeScheduler{list: []model.Appointment{
		{ID: "a1", StaffID: "anna", Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			StartMinute: 600, EndMinute: 645, Status: model.StatusConfirmed},
	}}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?org_id=org1&date=2026-03-14", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp map[string][]appointmentView
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp["appointments"]) != 1 || resp["appointments"][0].StartTime != "10:00" {
		t.Errorf("unexpected response %+v", resp)
	}
}
