package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/intervue-backend/internal/model"
)

// DomainRepository handles interview domain data access.
type DomainRepository struct {
	pool *pgxpool.Pool
}

// NewDomainRepository creates a new DomainRepository.
func NewDomainRepository(pool *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{pool: pool}
}

// List retrieves all domains with their curating admin's name.
func (r *DomainRepository) List(ctx context.Context) ([]model.Domain, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.name, d.admin_id, a.name, d.created_at
		 FROM domains d
		 JOIN admins a ON d.admin_id = a.id
		 ORDER BY d.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []model.Domain
	for rows.Next() {
		var d model.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.AdminID, &d.AdminName, &d.CreatedAt); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// GetByID retrieves one domain with its admin name.
func (r *DomainRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	d := &model.Domain{}
	err := r.pool.QueryRow(ctx,
		`SELECT d.id, d.name, d.admin_id, a.name, d.created_at
		 FROM domains d
		 JOIN admins a ON d.admin_id = a.id
		 WHERE d.id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.AdminID, &d.AdminName, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new domain.
func (r *DomainRepository) Create(ctx context.Context, d *model.Domain) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO domains (name, admin_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		d.Name, d.AdminID,
	).Scan(&d.ID, &d.CreatedAt)
}
