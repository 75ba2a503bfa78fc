package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/messaging"
	"github.com/soundlane/studio-booking-backend/internal/repository"
)

// ErrScheduleConflict is returned when a requested range overlaps an
// existing active booking for the same employee.
var ErrScheduleConflict = errors.New("requested time range conflicts with an existing booking")

const streamTypeBookingOrder = "booking_order"

// Clock supplies the current instant. The domain core never reads the wall
// clock; the service reads it exactly once per logical operation so every
// step of a multi-step transition sees the same now.
type Clock func() time.Time

// BookingService orchestrates the booking-order lifecycle: it checks
// schedule conflicts, mutates the aggregate, persists it, records the
// returned events and forwards them to the broker.
type BookingService struct {
	orders    repository.OrderRepository
	schedule  repository.ScheduleRepository
	catalog   repository.ServiceCatalog
	events    repository.EventStore
	publisher messaging.Publisher
	clock     Clock
}

func NewBookingService(
	orders repository.OrderRepository,
	schedule repository.ScheduleRepository,
	catalog repository.ServiceCatalog,
	events repository.EventStore,
	publisher messaging.Publisher,
	clock Clock,
) *BookingService {
	if clock == nil {
		clock = time.Now
	}
	return &BookingService{
		orders:    orders,
		schedule:  schedule,
		catalog:   catalog,
		events:    events,
		publisher: publisher,
		clock:     clock,
	}
}

// CreateBookingRequest carries everything needed to assemble a new order.
type CreateBookingRequest struct {
	StudioID           uuid.UUID
	ClientID           uuid.UUID
	AssignedEmployeeID uuid.UUID
	ServiceType        domain.ServiceType
	Start              time.Time
	End                time.Time
	ProjectID          *uuid.UUID
	Amount             decimal.Decimal
	Currency           domain.Currency
	PaymentMethod      domain.PaymentMethod
}

// CreateBooking validates the request against the studio's allow-list and
// the employee's schedule, then assembles and persists a BookingOrder with a
// pending payment.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.BookingOrder, error) {
	now := s.clock()

	rng, err := domain.NewTimeRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	allowed, err := s.catalog.AllowedServices(ctx, req.StudioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load studio services: %w", err)
	}

	existing, err := s.schedule.BookedRanges(ctx, req.StudioID, req.AssignedEmployeeID, rng, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked ranges: %w", err)
	}
	if domain.HasConflict(rng, existing) {
		return nil, ErrScheduleConflict
	}

	booking, err := domain.NewBooking(domain.NewBookingParams{
		ID:                 uuid.New(),
		StudioID:           req.StudioID,
		ClientID:           req.ClientID,
		AssignedEmployeeID: req.AssignedEmployeeID,
		ServiceType:        req.ServiceType,
		TimeRange:          rng,
		ProjectID:          req.ProjectID,
		CreatedAt:          now,
	}, allowed)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(uuid.New(), booking.ID(), req.Amount, req.Currency, req.PaymentMethod, now)
	if err != nil {
		return nil, err
	}

	order, err := domain.NewBookingOrder(uuid.New(), booking, payment)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist booking order: %w", err)
	}
	s.invalidateSchedule(ctx, booking)

	slog.Info("Service: Booking created",
		"order_id", order.ID(), "booking_id", booking.ID(), "range", rng.String())
	return order, nil
}

// Confirm confirms the order's booking.
func (s *BookingService) Confirm(ctx context.Context, orderID uuid.UUID) error {
	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		return order.Confirm(now)
	})
}

// CancelWithRefund cancels the order's booking and attempts a refund as a
// best-effort second step.
func (s *BookingService) CancelWithRefund(ctx context.Context, orderID uuid.UUID, reason string) error {
	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		return order.CancelWithRefund(now, reason)
	})
}

// Complete marks the order's booking as completed.
func (s *BookingService) Complete(ctx context.Context, orderID uuid.UUID) error {
	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		return order.Complete(now)
	})
}

// Reschedule moves the order's booking to a new range after checking the
// employee's schedule for conflicts, excluding the booking's own slot.
func (s *BookingService) Reschedule(ctx context.Context, orderID uuid.UUID, start, end time.Time) error {
	newRange, err := domain.NewTimeRange(start, end)
	if err != nil {
		return err
	}

	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		booking := order.Booking()
		bookingID := booking.ID()
		existing, err := s.schedule.BookedRanges(ctx, booking.StudioID(), booking.AssignedEmployeeID(), newRange, &bookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to load booked ranges: %w", err)
		}
		if domain.HasConflict(newRange, existing) {
			return nil, ErrScheduleConflict
		}
		return order.Reschedule(newRange, now)
	})
}

// MarkPaid marks the order's payment as paid.
func (s *BookingService) MarkPaid(ctx context.Context, orderID uuid.UUID) error {
	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		return order.MarkPaid(now)
	})
}

// MarkFailed marks the order's payment attempt as failed.
func (s *BookingService) MarkFailed(ctx context.Context, orderID uuid.UUID) error {
	return s.mutate(ctx, orderID, func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error) {
		return order.MarkFailed(now)
	})
}

// RecentOrders returns the latest booking orders for listing endpoints.
func (s *BookingService) RecentOrders(ctx context.Context, limit int) ([]repository.OrderSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindRecent(ctx, limit)
}

// GetOrder loads a single order.
func (s *BookingService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.BookingOrder, error) {
	order, _, err := s.orders.FindByID(ctx, orderID)
	return order, err
}

// mutate is the shared load → transition → save → record → publish path.
// The aggregate is saved with the version it was loaded at; a concurrent
// writer surfaces as ErrVersionConflict and no events leak out.
func (s *BookingService) mutate(ctx context.Context, orderID uuid.UUID, op func(order *domain.BookingOrder, now time.Time) ([]domain.Event, error)) error {
	order, version, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	events, err := op(order, s.clock())
	if err != nil {
		return err
	}

	if err := s.orders.Save(ctx, order, version); err != nil {
		return err
	}
	s.invalidateSchedule(ctx, order.Booking())

	if err := s.events.SaveEvents(ctx, orderID.String(), streamTypeBookingOrder, -1, events); err != nil {
		slog.Error("Failed to record events", "order_id", orderID, "err", err)
	}

	for _, event := range events {
		topic := messaging.TopicFor(event)
		if topic == "" {
			slog.Error("No topic mapped for event", "event", event.EventType())
			continue
		}
		if err := s.publisher.PublishEvent(ctx, topic, orderID.String(), event); err != nil {
			slog.Error("Failed to publish event", "topic", topic, "event", event.EventType(), "err", err)
		}
	}
	return nil
}

func (s *BookingService) invalidateSchedule(ctx context.Context, booking *domain.Booking) {
	inv, ok := s.schedule.(repository.ScheduleInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, booking.StudioID(), booking.AssignedEmployeeID()); err != nil {
		slog.Warn("Failed to invalidate schedule cache",
			"studio_id", booking.StudioID(), "employee_id", booking.AssignedEmployeeID(), "err", err)
	}
}
