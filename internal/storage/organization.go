// Package storage holds the pgx repositories behind the scheduling core.
package storage

import (
	"context"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

type OrgRepository struct {
	pool *db.Pool
}

func NewOrgRepository(pool *db.Pool) *OrgRepository {
	return &OrgRepository{pool: pool}
}

func (r *OrgRepository) Organization(ctx context.Context, orgID string) (model.Organization, error) {
	var o model.Organization
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, timezone, slot_step_minutes, lock_ttl_minutes,
			cancel_cutoff_minutes, auto_confirm, open_minute, close_minute
		FROM organizations
		WHERE id = $1
	`, orgID).Scan(
		&o.ID,
		&o.Name,
		&o.Timezone,
		&o.SlotStepMinutes,
		&o.LockTTLMinutes,
		&o.CancelCutoffMinutes,
		&o.AutoConfirm,
		&o.OpenMinute,
		&o.CloseMinute,
	)
	if err != nil {
		return model.Organization{}, err
	}
	return o, nil
}
