// Package booking runs the appointment write paths: book, reschedule,
// cancel and status changes. Every mutation re-validates availability
// inside its transaction under a per-(staff, date) advisory lock, then
// records a domain event in the outbox before committing.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/salonloop/scheduling/internal/availability"
	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/metrics"
	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/outbox"
	"github.com/salonloop/scheduling/internal/schederr"
	"github.com/salonloop/scheduling/internal/storage"
)

const (
	defaultCancelCutoffMinutes = 120
	codeAttempts               = 5
)

type Service struct {
	settings  availability.Settings
	catalog   availability.Catalog
	staff     availability.Directory
	windows   availability.WindowResolver
	pool      *db.Pool
	appts     *storage.AppointmentRepository
	customers *storage.CustomerRepository
	locks     *storage.LockRepository
	busy      *storage.BusyRepository
	events    *outbox.Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(settings availability.Settings, catalog availability.Catalog, staff availability.Directory, windows availability.WindowResolver, pool *db.Pool, appts *storage.AppointmentRepository, customers *storage.CustomerRepository, locks *storage.LockRepository, busy *storage.BusyRepository, events *outbox.Repository, logger *slog.Logger) *Service {
	return &Service{
		settings:  settings,
		catalog:   catalog,
		staff:     staff,
		windows:   windows,
		pool:      pool,
		appts:     appts,
		customers: customers,
		locks:     locks,
		busy:      busy,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

type BookRequest struct {
	OrganizationID string
	StaffID        string
	Date           time.Time
	StartMinute    int
	ServiceIDs     []string
	SessionID      string // optional: consumes the session's slot lock
	CustomerName   string
	CustomerPhone  string
}

// Book creates the appointment. The availability shown to the customer is
// advisory; the only answer that counts is the re-validation done here
// under the advisory lock.
func (s *Service) Book(ctx context.Context, req BookRequest) (model.Appointment, error) {
	if req.StaffID == "" || len(req.ServiceIDs) == 0 || strings.TrimSpace(req.CustomerPhone) == "" {
		return model.Appointment{}, schederr.ErrValidation
	}

	org, err := s.settings.Organization(ctx, req.OrganizationID)
	if err != nil {
		return model.Appointment{}, err
	}
	loc := org.Location(nil)
	now := s.now()
	if model.DateBefore(req.Date, now, loc) {
		return model.Appointment{}, schederr.ErrValidation
	}

	lines, err := s.catalog.ServiceLines(ctx, req.OrganizationID, req.ServiceIDs)
	if err != nil {
		return model.Appointment{}, err
	}
	duration := 0
	var total int64
	for _, l := range lines {
		duration += l.DurationMinutes
		total += l.PriceCents
	}
	end := req.StartMinute + duration
	if duration <= 0 || !model.ValidInterval(req.StartMinute, end) {
		return model.Appointment{}, schederr.ErrValidation
	}

	ok, err := s.staff.IsEligible(ctx, req.OrganizationID, req.StaffID, req.ServiceIDs)
	if err != nil {
		return model.Appointment{}, err
	}
	if !ok {
		return model.Appointment{}, schederr.ErrInvalidStaffForServices
	}

	if err := s.checkSlot(ctx, org, req.StaffID, req.Date, req.StartMinute, end, now, loc); err != nil {
		return model.Appointment{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.locks.AcquireAdvisory(ctx, tx, req.OrganizationID, req.StaffID, req.Date); err != nil {
		return model.Appointment{}, err
	}
	busy, err := s.busy.BusyWindowsTx(ctx, tx, req.OrganizationID, req.StaffID, req.Date, req.SessionID, "", now)
	if err != nil {
		return model.Appointment{}, err
	}
	if availability.OverlapsAny(req.StartMinute, end, busy) {
		metrics.AvailabilityConflictsTotal.WithLabelValues("book").Inc()
		return model.Appointment{}, schederr.ErrAvailabilityConflict
	}

	customer, err := s.customers.GetOrCreateByPhone(ctx, tx, req.OrganizationID, strings.TrimSpace(req.CustomerName), normalizePhone(req.CustomerPhone))
	if err != nil {
		return model.Appointment{}, err
	}

	code, err := s.uniqueCode(ctx, tx, req.OrganizationID)
	if err != nil {
		return model.Appointment{}, err
	}

	status := model.StatusPending
	if org.AutoConfirm {
		status = model.StatusConfirmed
	}
	appt := model.Appointment{
		ID:               uuid.NewString(),
		OrganizationID:   req.OrganizationID,
		StaffID:          req.StaffID,
		CustomerID:       customer.ID,
		Date:             req.Date,
		StartMinute:      req.StartMinute,
		EndMinute:        end,
		Status:           status,
		Services:         lines,
		ConfirmationCode: code,
		TotalCents:       total,
		CreatedAt:        now,
	}
	if err := s.appts.Insert(ctx, tx, appt); err != nil {
		if storage.IsExclusionConflict(err) {
			metrics.AvailabilityConflictsTotal.WithLabelValues("book").Inc()
			return model.Appointment{}, schederr.ErrAvailabilityConflict
		}
		return model.Appointment{}, err
	}

	if req.SessionID != "" {
		if _, err := s.locks.DeleteBySession(ctx, tx, req.OrganizationID, req.SessionID); err != nil {
			return model.Appointment{}, err
		}
	}

	evt, err := bookedEvent(appt)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.events.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}

	metrics.BookingsTotal.Inc()
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"org_id", appt.OrganizationID,
		"staff_id", appt.StaffID,
		"date", appt.Date.Format("2006-01-02"),
		"start", model.FormatMinute(appt.StartMinute),
		"status", appt.Status)
	return appt, nil
}

type RescheduleRequest struct {
	OrganizationID string
	AppointmentID  string
	StaffID        string // optional: empty keeps the current staff member
	Date           time.Time
	StartMinute    int
	SessionID      string
}

// Reschedule moves an appointment to a new staff/date/time, keeping its
// services and lifecycle status.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (model.Appointment, error) {
	org, err := s.settings.Organization(ctx, req.OrganizationID)
	if err != nil {
		return model.Appointment{}, err
	}
	loc := org.Location(nil)
	now := s.now()
	if model.DateBefore(req.Date, now, loc) {
		return model.Appointment{}, schederr.ErrValidation
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	appt, err := s.appts.GetForUpdate(ctx, tx, req.OrganizationID, req.AppointmentID)
	if storage.IsNotFound(err) {
		return model.Appointment{}, schederr.ErrAppointmentNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.Status.Terminal() {
		return model.Appointment{}, schederr.ErrInvalidStatusTransition
	}

	staffID := req.StaffID
	if staffID == "" {
		staffID = appt.StaffID
	}
	if staffID != appt.StaffID {
		ok, err := s.staff.IsEligible(ctx, req.OrganizationID, staffID, appt.ServiceIDs())
		if err != nil {
			return model.Appointment{}, err
		}
		if !ok {
			return model.Appointment{}, schederr.ErrInvalidStaffForServices
		}
	}

	duration := appt.EndMinute - appt.StartMinute
	end := req.StartMinute + duration
	if !model.ValidInterval(req.StartMinute, end) {
		return model.Appointment{}, schederr.ErrValidation
	}
	if err := s.checkSlot(ctx, org, staffID, req.Date, req.StartMinute, end, now, loc); err != nil {
		return model.Appointment{}, err
	}

	if err := s.locks.AcquireAdvisory(ctx, tx, req.OrganizationID, staffID, req.Date); err != nil {
		return model.Appointment{}, err
	}
	busy, err := s.busy.BusyWindowsTx(ctx, tx, req.OrganizationID, staffID, req.Date, req.SessionID, appt.ID, now)
	if err != nil {
		return model.Appointment{}, err
	}
	if availability.OverlapsAny(req.StartMinute, end, busy) {
		metrics.AvailabilityConflictsTotal.WithLabelValues("reschedule").Inc()
		return model.Appointment{}, schederr.ErrAvailabilityConflict
	}

	old := slotOf(appt.StaffID, appt.Date, appt.StartMinute, appt.EndMinute)
	if err := s.appts.UpdateSchedule(ctx, tx, appt.ID, staffID, req.Date, req.StartMinute, end); err != nil {
		if storage.IsExclusionConflict(err) {
			metrics.AvailabilityConflictsTotal.WithLabelValues("reschedule").Inc()
			return model.Appointment{}, schederr.ErrAvailabilityConflict
		}
		return model.Appointment{}, err
	}
	appt.StaffID = staffID
	appt.Date = req.Date
	appt.StartMinute = req.StartMinute
	appt.EndMinute = end

	if req.SessionID != "" {
		if _, err := s.locks.DeleteBySession(ctx, tx, req.OrganizationID, req.SessionID); err != nil {
			return model.Appointment{}, err
		}
	}

	evt, err := rescheduledEvent(appt, old)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.events.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}

	metrics.ReschedulesTotal.Inc()
	s.logger.Info("appointment rescheduled",
		"appointment_id", appt.ID,
		"org_id", appt.OrganizationID,
		"staff_id", appt.StaffID,
		"date", appt.Date.Format("2006-01-02"),
		"start", model.FormatMinute(appt.StartMinute))
	return appt, nil
}

type CancelRequest struct {
	OrganizationID string
	AppointmentID  string
	Reason         string
	By             string // "customer" or "staff"
}

// Cancel terminates the appointment without time restrictions. Staff use
// this path; customers go through CancelByCode which enforces the cutoff.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	appt, err := s.appts.GetForUpdate(ctx, tx, req.OrganizationID, req.AppointmentID)
	if storage.IsNotFound(err) {
		return schederr.ErrAppointmentNotFound
	}
	if err != nil {
		return err
	}
	if !model.CanTransition(appt.Status, model.StatusCancelled) {
		return schederr.ErrInvalidStatusTransition
	}

	now := s.now()
	if err := s.appts.Cancel(ctx, tx, appt.ID, now, req.Reason, req.By); err != nil {
		return err
	}
	evt, err := cancelledEvent(appt, now, req.Reason, req.By)
	if err != nil {
		return err
	}
	if err := s.events.Insert(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	metrics.CancellationsTotal.WithLabelValues(req.By).Inc()
	s.logger.Info("appointment cancelled",
		"appointment_id", appt.ID,
		"org_id", appt.OrganizationID,
		"cancelled_by", req.By)
	return nil
}

// LookupByCode is the customer self-service read. The phone number is the
// second factor; a mismatch is reported identically to an unknown code.
func (s *Service) LookupByCode(ctx context.Context, orgID, code, phone string) (model.Appointment, error) {
	appt, storedPhone, err := s.appts.GetByCode(ctx, orgID, strings.ToUpper(strings.TrimSpace(code)))
	if storage.IsNotFound(err) {
		return model.Appointment{}, schederr.ErrInvalidConfirmationOrPhone
	}
	if err != nil {
		return model.Appointment{}, err
	}
	if normalizePhone(phone) != normalizePhone(storedPhone) {
		return model.Appointment{}, schederr.ErrInvalidConfirmationOrPhone
	}
	return appt, nil
}

// CancelByCode cancels on behalf of the customer, enforcing the org's
// cancellation cutoff.
func (s *Service) CancelByCode(ctx context.Context, orgID, code, phone, reason string) error {
	appt, err := s.LookupByCode(ctx, orgID, code, phone)
	if err != nil {
		return err
	}

	org, err := s.settings.Organization(ctx, orgID)
	if err != nil {
		return err
	}
	if !modifiable(appt.StartAt(org.Location(nil)), s.now(), cutoff(org)) {
		return schederr.ErrOutsideModificationWindow
	}

	return s.Cancel(ctx, CancelRequest{
		OrganizationID: orgID,
		AppointmentID:  appt.ID,
		Reason:         reason,
		By:             "customer",
	})
}

type CustomerRescheduleRequest struct {
	OrganizationID   string
	ConfirmationCode string
	Phone            string
	StaffID          string
	Date             time.Time
	StartMinute      int
	SessionID        string
}

// RescheduleByCode moves the appointment on behalf of the customer. The
// cutoff applies to the slot being given up, not the new one.
func (s *Service) RescheduleByCode(ctx context.Context, req CustomerRescheduleRequest) (model.Appointment, error) {
	appt, err := s.LookupByCode(ctx, req.OrganizationID, req.ConfirmationCode, req.Phone)
	if err != nil {
		return model.Appointment{}, err
	}

	org, err := s.settings.Organization(ctx, req.OrganizationID)
	if err != nil {
		return model.Appointment{}, err
	}
	if !modifiable(appt.StartAt(org.Location(nil)), s.now(), cutoff(org)) {
		return model.Appointment{}, schederr.ErrOutsideModificationWindow
	}

	return s.Reschedule(ctx, RescheduleRequest{
		OrganizationID: req.OrganizationID,
		AppointmentID:  appt.ID,
		StaffID:        req.StaffID,
		Date:           req.Date,
		StartMinute:    req.StartMinute,
		SessionID:      req.SessionID,
	})
}

// UpdateStatus moves the appointment through its lifecycle. no_show is
// additionally gated on the start time having passed.
func (s *Service) UpdateStatus(ctx context.Context, orgID, apptID string, to model.Status) (model.Appointment, error) {
	if !to.Valid() {
		return model.Appointment{}, schederr.ErrValidation
	}

	org, err := s.settings.Organization(ctx, orgID)
	if err != nil {
		return model.Appointment{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	appt, err := s.appts.GetForUpdate(ctx, tx, orgID, apptID)
	if storage.IsNotFound(err) {
		return model.Appointment{}, schederr.ErrAppointmentNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	from := appt.Status
	if !model.CanTransition(from, to) {
		return model.Appointment{}, schederr.ErrInvalidStatusTransition
	}

	now := s.now()
	if to == model.StatusNoShow && !noShowAllowed(appt.StartAt(org.Location(nil)), now) {
		return model.Appointment{}, schederr.ErrInvalidStatusTransition
	}

	var evt outbox.Event
	if to == model.StatusCancelled {
		if err := s.appts.Cancel(ctx, tx, appt.ID, now, "", "staff"); err != nil {
			return model.Appointment{}, err
		}
		evt, err = cancelledEvent(appt, now, "", "staff")
	} else {
		if err := s.appts.SetStatus(ctx, tx, appt.ID, to); err != nil {
			return model.Appointment{}, err
		}
		evt, err = statusChangedEvent(appt, from, to)
	}
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.events.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}

	if to == model.StatusCancelled {
		metrics.CancellationsTotal.WithLabelValues("staff").Inc()
	}
	appt.Status = to
	s.logger.Info("appointment status changed",
		"appointment_id", appt.ID,
		"org_id", appt.OrganizationID,
		"from", from,
		"to", to)
	return appt, nil
}

func (s *Service) Get(ctx context.Context, orgID, apptID string) (model.Appointment, error) {
	appt, err := s.appts.Get(ctx, orgID, apptID)
	if storage.IsNotFound(err) {
		return model.Appointment{}, schederr.ErrAppointmentNotFound
	}
	return appt, err
}

func (s *Service) ListByDate(ctx context.Context, orgID string, date time.Time, staffID string, status model.Status) ([]model.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, schederr.ErrValidation
	}
	return s.appts.ListByDate(ctx, orgID, date, staffID, status)
}

// checkSlot verifies the interval lies inside the staff member's working
// windows and has not already started today.
func (s *Service) checkSlot(ctx context.Context, org model.Organization, staffID string, date time.Time, start, end int, now time.Time, loc *time.Location) error {
	windows, err := s.windows.WorkingWindows(ctx, org, staffID, date)
	if err != nil {
		return err
	}
	inside := false
	for _, w := range windows {
		if start >= w.Start && end <= w.End {
			inside = true
			break
		}
	}
	if !inside {
		return schederr.ErrAvailabilityConflict
	}
	if model.SameDate(date, now, loc) {
		local := now.In(loc)
		if start < local.Hour()*60+local.Minute() {
			return schederr.ErrAvailabilityConflict
		}
	}
	return nil
}

func (s *Service) uniqueCode(ctx context.Context, tx pgx.Tx, orgID string) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := newConfirmationCode()
		if err != nil {
			return "", err
		}
		exists, err := s.appts.CodeExists(ctx, tx, orgID, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique confirmation code")
}

func cutoff(org model.Organization) time.Duration {
	minutes := org.CancelCutoffMinutes
	if minutes <= 0 {
		minutes = defaultCancelCutoffMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// noShowAllowed reports whether an appointment may be marked no_show: not
// before its start instant. A customer cannot fail to show up for a slot
// that has not begun.
func noShowAllowed(startAt, now time.Time) bool {
	return !now.Before(startAt)
}

// modifiable reports whether a customer may still change the appointment.
// Allowed strictly before the cutoff instant: at exactly start minus the
// cutoff the window has closed.
func modifiable(startAt, now time.Time, cutoff time.Duration) bool {
	return startAt.Sub(now) > cutoff
}

// normalizePhone strips formatting so "+7 (900) 123-45-67" and
// "+79001234567" compare equal. A leading + is kept.
func normalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
