package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
)

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a ScheduleRepository backed by Postgres.
func NewScheduleRepository(db *sql.DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// BookedRanges returns the ranges of active bookings for the employee that
// overlap the window, half-open on both sides so adjacent bookings are not
// reported.
func (r *scheduleRepository) BookedRanges(ctx context.Context, studioID, employeeID uuid.UUID, window domain.TimeRange, exclude *uuid.UUID) ([]domain.TimeRange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT start_time, end_time
		FROM bookings
		WHERE studio_id = $1
		  AND assigned_employee_id = $2
		  AND status IN ('created', 'confirmed', 'rescheduled')
		  AND start_time < $3
		  AND end_time > $4
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY start_time ASC`,
		studioID, employeeID, window.End(), window.Start(), exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to query booked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []domain.TimeRange
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan booked range: %w", err)
		}
		rng, err := domain.NewTimeRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("stored booking has invalid range: %w", err)
		}
		ranges = append(ranges, rng)
	}
	return ranges, rows.Err()
}
