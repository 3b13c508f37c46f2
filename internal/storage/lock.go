package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

type LockRepository struct {
	pool *db.Pool
}

func NewLockRepository(pool *db.Pool) *LockRepository {
	return &LockRepository{pool: pool}
}

// AcquireAdvisory serializes writers on the same (staff, date) calendar
// page for the rest of the transaction. Every path that inserts or moves
// an appointment or slot lock takes it before re-validating, so two
// concurrent sessions racing for the same window see each other.
func (r *LockRepository) AcquireAdvisory(ctx context.Context, tx pgx.Tx, orgID, staffID string, date time.Time) error {
	_, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2 || ':' || $3::date::text))
	`, orgID, staffID, date)
	return err
}

func (r *LockRepository) Insert(ctx context.Context, tx pgx.Tx, l model.SlotLock) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO slot_locks (
			id, organization_id, staff_id, date,
			start_minute, end_minute, session_id, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID, l.OrganizationID, l.StaffID, l.Date,
		l.StartMinute, l.EndMinute, l.SessionID, l.ExpiresAt)
	return err
}

// DeleteBySession removes the session's lock, if any. Used both for
// explicit release and to replace a lock when the session re-acquires.
func (r *LockRepository) DeleteBySession(ctx context.Context, tx pgx.Tx, orgID, sessionID string) (int64, error) {
	var q querier = r.pool
	if tx != nil {
		q = tx
	}
	tag, err := q.Exec(ctx, `
		DELETE FROM slot_locks WHERE organization_id = $1 AND session_id = $2
	`, orgID, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired is the sweeper's pass. Reads already ignore expired rows;
// this just keeps the table small.
func (r *LockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM slot_locks WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
