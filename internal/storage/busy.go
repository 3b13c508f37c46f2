package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

// BusyRepository computes the claimed intervals on a staff/date: every
// non-terminal appointment plus every other session's unexpired slot lock.
// The availability computer reads it from the pool; the booking and lock
// paths re-read it inside their transaction after taking the advisory lock.
type BusyRepository struct {
	pool *db.Pool
}

func NewBusyRepository(pool *db.Pool) *BusyRepository {
	return &BusyRepository{pool: pool}
}

func (r *BusyRepository) BusyWindows(ctx context.Context, orgID, staffID string, date time.Time, excludeSessionID string, now time.Time) ([]model.Window, error) {
	return busyWindows(ctx, r.pool, orgID, staffID, date, excludeSessionID, "", now)
}

// BusyWindowsTx is the transactional re-validation read. excludeApptID
// lets a reschedule ignore the appointment being moved.
func (r *BusyRepository) BusyWindowsTx(ctx context.Context, tx pgx.Tx, orgID, staffID string, date time.Time, excludeSessionID, excludeApptID string, now time.Time) ([]model.Window, error) {
	return busyWindows(ctx, tx, orgID, staffID, date, excludeSessionID, excludeApptID, now)
}

func busyWindows(ctx context.Context, q querier, orgID, staffID string, date time.Time, excludeSessionID, excludeApptID string, now time.Time) ([]model.Window, error) {
	rows, err := q.Query(ctx, `
		SELECT start_minute, end_minute
		FROM appointments
		WHERE organization_id = $1
			AND staff_id = $2
			AND date = $3::date
			AND status NOT IN ('completed', 'cancelled', 'no_show')
			AND ($4 = '' OR id::text <> $4)
		UNION ALL
		SELECT start_minute, end_minute
		FROM slot_locks
		WHERE organization_id = $1
			AND staff_id = $2
			AND date = $3::date
			AND session_id <> $5
			AND expires_at > $6
		ORDER BY start_minute ASC
	`, orgID, staffID, date, excludeApptID, excludeSessionID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Window
	for rows.Next() {
		var w model.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
