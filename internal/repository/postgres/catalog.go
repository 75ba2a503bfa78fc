package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
)

type serviceCatalog struct {
	db *sql.DB
}

// NewServiceCatalog creates a ServiceCatalog backed by Postgres.
func NewServiceCatalog(db *sql.DB) repository.ServiceCatalog {
	return &serviceCatalog{db: db}
}

func (c *serviceCatalog) AllowedServices(ctx context.Context, studioID uuid.UUID) (domain.ServiceSet, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT service_type FROM studio_services WHERE studio_id = $1", studioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query studio services: %w", err)
	}
	defer rows.Close()

	set := domain.ServiceSet{}
	for rows.Next() {
		var svc domain.ServiceType
		if err := rows.Scan(&svc); err != nil {
			return nil, fmt.Errorf("failed to scan service type: %w", err)
		}
		set[svc] = struct{}{}
	}
	return set, rows.Err()
}

// SeedServices inserts the default allow-list for a studio if it has none.
func SeedServices(ctx context.Context, db *sql.DB, studioID uuid.UUID, services []domain.ServiceType) error {
	for _, svc := range services {
		_, err := db.ExecContext(ctx,
			"INSERT INTO studio_services (studio_id, service_type) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			studioID, svc)
		if err != nil {
			return fmt.Errorf("failed to seed service %s: %w", svc, err)
		}
	}
	return nil
}
