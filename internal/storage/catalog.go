package storage

import (
	"context"
	"fmt"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
	"github.com/salonloop/scheduling/internal/schederr"
)

type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ServiceLines resolves service ids to priced duration lines in the
// caller's requested order. Unknown or inactive ids are an error: a
// booking must never silently drop a service.
func (r *CatalogRepository) ServiceLines(ctx context.Context, orgID string, serviceIDs []string) ([]model.ServiceLine, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, duration_minutes, price_cents
		FROM services
		WHERE organization_id = $1 AND id = ANY($2) AND is_active
	`, orgID, serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]model.ServiceLine, len(serviceIDs))
	for rows.Next() {
		var l model.ServiceLine
		if err := rows.Scan(&l.ServiceID, &l.Name, &l.DurationMinutes, &l.PriceCents); err != nil {
			return nil, err
		}
		byID[l.ServiceID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines := make([]model.ServiceLine, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		l, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown service %q", schederr.ErrValidation, id)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
