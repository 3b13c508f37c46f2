package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

const appointmentColumns = `
	id::text, organization_id::text, staff_id::text, customer_id::text,
	date, start_minute, end_minute, status, services, confirmation_code,
	total_cents, cancelled_at, cancel_reason, cancelled_by, created_at`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Begin opens the transaction a booking or reschedule runs inside. The
// caller takes the per-(staff, date) advisory lock immediately after.
func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *AppointmentRepository) Insert(ctx context.Context, tx pgx.Tx, a model.Appointment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments (
			id, organization_id, staff_id, customer_id, date,
			start_minute, end_minute, status, services, confirmation_code,
			total_cents, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, a.ID, a.OrganizationID, a.StaffID, a.CustomerID, a.Date,
		a.StartMinute, a.EndMinute, a.Status, a.Services, a.ConfirmationCode,
		a.TotalCents, a.CreatedAt)
	return err
}

func (r *AppointmentRepository) Get(ctx context.Context, orgID, id string) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE organization_id = $1 AND id = $2
	`, orgID, id))
}

// GetForUpdate row-locks the appointment for the rest of the transaction.
func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orgID, id string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE organization_id = $1 AND id = $2
		FOR UPDATE
	`, orgID, id))
}

// GetByCode is the customer self-service lookup. It also returns the
// customer's phone so the caller can verify the second factor without a
// separate query.
func (r *AppointmentRepository) GetByCode(ctx context.Context, orgID, code string) (model.Appointment, string, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT a.id::text, a.organization_id::text, a.staff_id::text, a.customer_id::text,
			a.date, a.start_minute, a.end_minute, a.status, a.services, a.confirmation_code,
			a.total_cents, a.cancelled_at, a.cancel_reason, a.cancelled_by, a.created_at,
			c.phone
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.organization_id = $1 AND a.confirmation_code = $2
	`, orgID, code)

	var a model.Appointment
	var phone string
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.StaffID, &a.CustomerID,
		&a.Date, &a.StartMinute, &a.EndMinute, &a.Status, &a.Services,
		&a.ConfirmationCode, &a.TotalCents, &a.CancelledAt, &a.CancelReason,
		&a.CancelledBy, &a.CreatedAt, &phone,
	)
	if err != nil {
		return model.Appointment{}, "", err
	}
	return a, phone, nil
}

// UpdateSchedule moves an appointment to a new staff/date/window. Status
// and services are untouched; a reschedule never resets the lifecycle.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, tx pgx.Tx, id, staffID string, date time.Time, startMinute, endMinute int) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET staff_id = $2, date = $3, start_minute = $4, end_minute = $5
		WHERE id = $1
	`, id, staffID, date, startMinute, endMinute)
	return err
}

func (r *AppointmentRepository) SetStatus(ctx context.Context, tx pgx.Tx, id string, status model.Status) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	return err
}

func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, id string, at time.Time, reason, by string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled', cancelled_at = $2, cancel_reason = $3, cancelled_by = $4
		WHERE id = $1
	`, id, at, reason, by)
	return err
}

// CodeExists checks a candidate confirmation code inside the booking
// transaction before the insert commits it.
func (r *AppointmentRepository) CodeExists(ctx context.Context, tx pgx.Tx, orgID, code string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE organization_id = $1 AND confirmation_code = $2
		)
	`, orgID, code).Scan(&exists)
	return exists, err
}

// ListByDate feeds the admin day view. staffID and status filters are
// optional; empty means all.
func (r *AppointmentRepository) ListByDate(ctx context.Context, orgID string, date time.Time, staffID string, status model.Status) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE organization_id = $1
			AND date = $2::date
			AND ($3 = '' OR staff_id::text = $3)
			AND ($4 = '' OR status = $4)
		ORDER BY start_minute ASC, staff_id ASC
	`, orgID, date, staffID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.StaffID, &a.CustomerID,
		&a.Date, &a.StartMinute, &a.EndMinute, &a.Status, &a.Services,
		&a.ConfirmationCode, &a.TotalCents, &a.CancelledAt, &a.CancelReason,
		&a.CancelledBy, &a.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}
