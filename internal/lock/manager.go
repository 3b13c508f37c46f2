// Package lock manages short-lived slot reservations taken while a
// customer fills in the booking form.
package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/salonloop/scheduling/internal/availability"
	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/metrics"
	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
	"github.com/salonloop/scheduling/internal/storage"
)

const defaultTTLMinutes = 3

type Manager struct {
	settings availability.Settings
	catalog  availability.Catalog
	staff    availability.Directory
	windows  availability.WindowResolver
	pool     *db.Pool
	locks    *storage.LockRepository
	busy     *storage.BusyRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewManager(settings availability.Settings, catalog availability.Catalog, staff availability.Directory, windows availability.WindowResolver, pool *db.Pool, locks *storage.LockRepository, busy *storage.BusyRepository, logger *slog.Logger) *Manager {
	return &Manager{
		settings: settings,
		catalog:  catalog,
		staff:    staff,
		windows:  windows,
		pool:     pool,
		locks:    locks,
		busy:     busy,
		logger:   logger,
		now:      time.Now,
	}
}

type AcquireRequest struct {
	OrganizationID string
	StaffID        string
	Date           time.Time
	StartMinute    int
	ServiceIDs     []string
	SessionID      string
}

// Acquire reserves the window for the session. A session holds at most
// one lock per organization: acquiring again releases the previous one,
// which covers both slot changes and TTL refreshes from the booking form.
func (m *Manager) Acquire(ctx context.Context, req AcquireRequest) (model.SlotLock, error) {
	if req.SessionID == "" || req.StaffID == "" || len(req.ServiceIDs) == 0 {
		return model.SlotLock{}, schederr.ErrValidation
	}

	org, err := m.settings.Organization(ctx, req.OrganizationID)
	if err != nil {
		return model.SlotLock{}, err
	}
	loc := org.Location(nil)
	now := m.now()
	if model.DateBefore(req.Date, now, loc) {
		return model.SlotLock{}, schederr.ErrValidation
	}

	lines, err := m.catalog.ServiceLines(ctx, req.OrganizationID, req.ServiceIDs)
	if err != nil {
		return model.SlotLock{}, err
	}
	duration := 0
	for _, l := range lines {
		duration += l.DurationMinutes
	}
	end := req.StartMinute + duration
	if duration <= 0 || !model.ValidInterval(req.StartMinute, end) {
		return model.SlotLock{}, schederr.ErrValidation
	}

	ok, err := m.staff.IsEligible(ctx, req.OrganizationID, req.StaffID, req.ServiceIDs)
	if err != nil {
		return model.SlotLock{}, err
	}
	if !ok {
		return model.SlotLock{}, schederr.ErrInvalidStaffForServices
	}

	windows, err := m.windows.WorkingWindows(ctx, org, req.StaffID, req.Date)
	if err != nil {
		return model.SlotLock{}, err
	}
	if !windowContains(windows, req.StartMinute, end) {
		return model.SlotLock{}, schederr.ErrAvailabilityConflict
	}
	if model.SameDate(req.Date, now, loc) {
		local := now.In(loc)
		if req.StartMinute < local.Hour()*60+local.Minute() {
			return model.SlotLock{}, schederr.ErrAvailabilityConflict
		}
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return model.SlotLock{}, err
	}
	defer tx.Rollback(ctx)

	if err := m.locks.AcquireAdvisory(ctx, tx, req.OrganizationID, req.StaffID, req.Date); err != nil {
		return model.SlotLock{}, err
	}
	busy, err := m.busy.BusyWindowsTx(ctx, tx, req.OrganizationID, req.StaffID, req.Date, req.SessionID, "", now)
	if err != nil {
		return model.SlotLock{}, err
	}
	if availability.OverlapsAny(req.StartMinute, end, busy) {
		metrics.AvailabilityConflictsTotal.WithLabelValues("lock").Inc()
		return model.SlotLock{}, schederr.ErrAvailabilityConflict
	}

	if _, err := m.locks.DeleteBySession(ctx, tx, req.OrganizationID, req.SessionID); err != nil {
		return model.SlotLock{}, err
	}

	ttl := org.LockTTLMinutes
	if ttl <= 0 {
		ttl = defaultTTLMinutes
	}
	l := model.SlotLock{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		StaffID:        req.StaffID,
		Date:           req.Date,
		StartMinute:    req.StartMinute,
		EndMinute:      end,
		SessionID:      req.SessionID,
		ExpiresAt:      now.Add(time.Duration(ttl) * time.Minute),
	}
	if err := m.locks.Insert(ctx, tx, l); err != nil {
		if storage.IsUniqueViolation(err) {
			return model.SlotLock{}, schederr.ErrAvailabilityConflict
		}
		return model.SlotLock{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.SlotLock{}, err
	}

	metrics.LocksAcquiredTotal.Inc()
	m.logger.Info("slot lock acquired",
		"org_id", req.OrganizationID,
		"staff_id", req.StaffID,
		"date", req.Date.Format("2006-01-02"),
		"start", model.FormatMinute(req.StartMinute),
		"expires_at", l.ExpiresAt)
	return l, nil
}

// Release drops the session's lock. Releasing a lock that never existed
// or already expired is not an error.
func (m *Manager) Release(ctx context.Context, orgID, sessionID string) error {
	if sessionID == "" {
		return schederr.ErrValidation
	}
	_, err := m.locks.DeleteBySession(ctx, nil, orgID, sessionID)
	return err
}

// Sweep removes expired lock rows until ctx is cancelled. Expired rows are
// already invisible to reads, so the cadence only affects table size.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.locks.DeleteExpired(ctx, m.now())
			if err != nil {
				m.logger.Error("lock sweep failed", "error", err)
				continue
			}
			if n > 0 {
				metrics.LocksSweptTotal.Add(float64(n))
				m.logger.Debug("expired slot locks removed", "count", n)
			}
		}
	}
}

func windowContains(windows []model.Window, start, end int) bool {
	for _, w := range windows {
		if start >= w.Start && end <= w.End {
			return true
		}
	}
	return false
}
