package storage

import (
	"context"
	"time"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

// StaffRepository answers the staff directory and schedule queries the
// availability computer and calendar resolver depend on.
type StaffRepository struct {
	pool *db.Pool
}

func NewStaffRepository(pool *db.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// EligibleStaff returns active staff who can perform every requested
// service.
func (r *StaffRepository) EligibleStaff(ctx context.Context, orgID string, serviceIDs []string) ([]model.Staff, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.id::text, s.organization_id::text, s.name, s.phone, s.is_active
		FROM staff s
		JOIN staff_services ss ON ss.staff_id = s.id
		WHERE s.organization_id = $1
			AND s.is_active
			AND ss.service_id = ANY($2)
		GROUP BY s.id
		HAVING COUNT(DISTINCT ss.service_id) = $3
		ORDER BY s.name ASC
	`, orgID, serviceIDs, len(serviceIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Phone, &s.Active); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StaffRepository) IsEligible(ctx context.Context, orgID, staffID string, serviceIDs []string) (bool, error) {
	if len(serviceIDs) == 0 {
		return false, nil
	}
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT ss.service_id)
		FROM staff_services ss
		JOIN staff s ON s.id = ss.staff_id
		WHERE s.organization_id = $1
			AND s.is_active
			AND ss.staff_id = $2
			AND ss.service_id = ANY($3)
	`, orgID, staffID, serviceIDs).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(serviceIDs), nil
}

func (r *StaffRepository) WeeklySchedule(ctx context.Context, staffID string) ([]model.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT staff_id::text, weekday, is_available, start_minute, end_minute
		FROM staff_schedules
		WHERE staff_id = $1
		ORDER BY weekday ASC
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		if err := rows.Scan(&e.StaffID, &e.Weekday, &e.Available, &e.StartMinute, &e.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *StaffRepository) OverrideFor(ctx context.Context, staffID string, date time.Time) (model.ScheduleOverride, bool, error) {
	var o model.ScheduleOverride
	err := r.pool.QueryRow(ctx, `
		SELECT staff_id::text, date, is_closed, start_minute, end_minute
		FROM schedule_overrides
		WHERE staff_id = $1 AND date = $2::date
	`, staffID, date).Scan(&o.StaffID, &o.Date, &o.Closed, &o.StartMinute, &o.EndMinute)
	if IsNotFound(err) {
		return model.ScheduleOverride{}, false, nil
	}
	if err != nil {
		return model.ScheduleOverride{}, false, err
	}
	return o, true, nil
}

func (r *StaffRepository) OvertimeFor(ctx context.Context, staffID string, date time.Time) ([]model.OvertimeWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT staff_id::text, date, start_minute, end_minute
		FROM staff_overtime
		WHERE staff_id = $1 AND date = $2::date
		ORDER BY start_minute ASC
	`, staffID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OvertimeWindow
	for rows.Next() {
		var w model.OvertimeWindow
		if err := rows.Scan(&w.StaffID, &w.Date, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
