package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			studio_id UUID NOT NULL,
			client_id UUID NOT NULL,
			assigned_employee_id UUID NOT NULL,
			service_type TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			reschedule_count INT NOT NULL DEFAULT 0,
			project_id UUID,
			created_at TIMESTAMPTZ NOT NULL,
			confirmed_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			rescheduled_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_bookings_schedule
			ON bookings (studio_id, assigned_employee_id, start_time);

		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			booking_id UUID NOT NULL REFERENCES bookings(id),
			amount NUMERIC(12, 2) NOT NULL,
			currency TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL,
			paid_at TIMESTAMPTZ,
			refunded_at TIMESTAMPTZ,
			failed_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS booking_orders (
			id UUID PRIMARY KEY,
			booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id),
			payment_id UUID NOT NULL UNIQUE REFERENCES payments(id),
			version INT NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS studio_services (
			studio_id UUID NOT NULL,
			service_type TEXT NOT NULL,
			PRIMARY KEY (studio_id, service_type)
		);

		CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			stream_id TEXT NOT NULL,
			stream_type TEXT NOT NULL,
			version INT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (stream_id, version)
		);
	`)
	return err
}
