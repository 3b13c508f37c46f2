package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/model"
)

type CustomerRepository struct {
	pool *db.Pool
}

func NewCustomerRepository(pool *db.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetOrCreateByPhone upserts the customer keyed by (org, phone) inside the
// booking transaction. A returning customer booking under a new name has
// the name refreshed; an empty name keeps the stored one.
func (r *CustomerRepository) GetOrCreateByPhone(ctx context.Context, tx pgx.Tx, orgID, name, phone string) (model.Customer, error) {
	var c model.Customer
	err := tx.QueryRow(ctx, `
		INSERT INTO customers (organization_id, name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, phone) DO UPDATE
			SET name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name)
		RETURNING id::text, organization_id::text, name, phone
	`, orgID, name, phone).Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Phone)
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}
