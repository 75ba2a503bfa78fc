package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundlane/studio-booking-backend/internal/domain"
)

// ErrNotFound is returned when an aggregate does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when a save races another writer. Callers
// should reload the aggregate and retry or surface the conflict.
var ErrVersionConflict = errors.New("version conflict")

// OrderSummary is the read-model row for listing endpoints.
type OrderSummary struct {
	OrderID       uuid.UUID            `json:"order_id"`
	BookingID     uuid.UUID            `json:"booking_id"`
	StudioID      uuid.UUID            `json:"studio_id"`
	ClientID      uuid.UUID            `json:"client_id"`
	ServiceType   domain.ServiceType   `json:"service_type"`
	Start         time.Time            `json:"start"`
	End           time.Time            `json:"end"`
	BookingStatus domain.BookingStatus `json:"booking_status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      domain.Currency      `json:"currency"`
	CreatedAt     time.Time            `json:"created_at"`
}

// OrderRepository persists BookingOrder aggregates. Saves carry the version
// the caller loaded; a mismatch fails with ErrVersionConflict, which closes
// the check-then-commit race between concurrent schedule writers.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.BookingOrder) error
	Save(ctx context.Context, order *domain.BookingOrder, expectedVersion int) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BookingOrder, int, error)
	FindRecent(ctx context.Context, limit int) ([]OrderSummary, error)
	// FindDueCompletion returns ids of orders whose booking is confirmed and
	// whose range ended at or before the given instant.
	FindDueCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

// ScheduleRepository supplies the existing booked ranges that feed the
// conflict check. Implementations must pre-filter by studio, employee and
// window, and count only active bookings. exclude, when non-nil, drops that
// booking's own range so a reschedule does not conflict with itself.
type ScheduleRepository interface {
	BookedRanges(ctx context.Context, studioID, employeeID uuid.UUID, window domain.TimeRange, exclude *uuid.UUID) ([]domain.TimeRange, error)
}

// ScheduleInvalidator is implemented by caching schedule repositories that
// need to drop stale entries after a mutation.
type ScheduleInvalidator interface {
	Invalidate(ctx context.Context, studioID, employeeID uuid.UUID) error
}

// ServiceCatalog resolves the per-studio allow-list of bookable services.
type ServiceCatalog interface {
	AllowedServices(ctx context.Context, studioID uuid.UUID) (domain.ServiceSet, error)
}

// EventRecord is a domain event as stored in the event log.
type EventRecord struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int       `json:"version"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventStore appends and loads domain events per aggregate stream. An
// expectedVersion below zero appends without a concurrency check; the
// booking-order tables own optimistic concurrency, the event log is an
// append-only audit trail behind them.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []domain.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]EventRecord, error)
}
