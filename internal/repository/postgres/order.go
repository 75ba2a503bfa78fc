package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.BookingOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := order.Booking().Snapshot()
	p := order.Payment().Snapshot()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, studio_id, client_id, assigned_employee_id, service_type,
			start_time, end_time, status, reschedule_count, project_id, created_at,
			confirmed_at, cancelled_at, completed_at, rescheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.StudioID, b.ClientID, b.AssignedEmployeeID, b.ServiceType,
		b.TimeRange.Start(), b.TimeRange.End(), b.Status, b.RescheduleCount, b.ProjectID,
		b.CreatedAt, b.ConfirmedAt, b.CancelledAt, b.CompletedAt, b.RescheduledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, amount, currency, payment_method, status,
			created_at, paid_at, refunded_at, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.BookingID, p.Amount, p.Currency, p.Method, p.Status,
		p.CreatedAt, p.PaidAt, p.RefundedAt, p.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO booking_orders (id, booking_id, payment_id, version) VALUES ($1, $2, $3, 1)",
		order.ID(), b.ID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking order: %w", err)
	}

	return tx.Commit()
}

func (r *orderRepository) Save(ctx context.Context, order *domain.BookingOrder, expectedVersion int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE booking_orders SET version = version + 1 WHERE id = $1 AND version = $2",
		order.ID(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to bump order version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrVersionConflict
	}

	b := order.Booking().Snapshot()
	p := order.Payment().Snapshot()

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET start_time = $2, end_time = $3, status = $4, reschedule_count = $5,
			confirmed_at = $6, cancelled_at = $7, completed_at = $8, rescheduled_at = $9
		WHERE id = $1`,
		b.ID, b.TimeRange.Start(), b.TimeRange.End(), b.Status, b.RescheduleCount,
		b.ConfirmedAt, b.CancelledAt, b.CompletedAt, b.RescheduledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE payments SET status = $2, paid_at = $3, refunded_at = $4, failed_at = $5 WHERE id = $1",
		p.ID, p.Status, p.PaidAt, p.RefundedAt, p.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return tx.Commit()
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BookingOrder, int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.version,
			b.id, b.studio_id, b.client_id, b.assigned_employee_id, b.service_type,
			b.start_time, b.end_time, b.status, b.reschedule_count, b.project_id,
			b.created_at, b.confirmed_at, b.cancelled_at, b.completed_at, b.rescheduled_at,
			p.id, p.booking_id, p.amount, p.currency, p.payment_method, p.status,
			p.created_at, p.paid_at, p.refunded_at, p.failed_at
		FROM booking_orders o
		JOIN bookings b ON b.id = o.booking_id
		JOIN payments p ON p.id = o.payment_id
		WHERE o.id = $1`, id)

	var (
		orderID    uuid.UUID
		version    int
		bs         domain.BookingSnapshot
		ps         domain.PaymentSnapshot
		start, end time.Time
		amount     decimal.Decimal
	)
	err := row.Scan(&orderID, &version,
		&bs.ID, &bs.StudioID, &bs.ClientID, &bs.AssignedEmployeeID, &bs.ServiceType,
		&start, &end, &bs.Status, &bs.RescheduleCount, &bs.ProjectID,
		&bs.CreatedAt, &bs.ConfirmedAt, &bs.CancelledAt, &bs.CompletedAt, &bs.RescheduledAt,
		&ps.ID, &ps.BookingID, &amount, &ps.Currency, &ps.Method, &ps.Status,
		&ps.CreatedAt, &ps.PaidAt, &ps.RefundedAt, &ps.FailedAt,
	)
	if err == sql.ErrNoRows {
		return nil, 0, repository.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan booking order: %w", err)
	}

	rng, err := domain.NewTimeRange(start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("stored booking %s has invalid range: %w", bs.ID, err)
	}
	bs.TimeRange = rng
	ps.Amount = amount

	order, err := domain.NewBookingOrder(orderID, domain.RestoreBooking(bs), domain.RestorePayment(ps))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to rebuild booking order %s: %w", orderID, err)
	}
	return order, version, nil
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]repository.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, b.id, b.studio_id, b.client_id, b.service_type, b.start_time, b.end_time,
			b.status, p.status, p.amount, p.currency, b.created_at
		FROM booking_orders o
		JOIN bookings b ON b.id = o.booking_id
		JOIN payments p ON p.id = o.payment_id
		ORDER BY b.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	var summaries []repository.OrderSummary
	for rows.Next() {
		var s repository.OrderSummary
		if err := rows.Scan(&s.OrderID, &s.BookingID, &s.StudioID, &s.ClientID, &s.ServiceType,
			&s.Start, &s.End, &s.BookingStatus, &s.PaymentStatus, &s.Amount, &s.Currency, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return summaries, nil
}

func (r *orderRepository) FindDueCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id
		FROM booking_orders o
		JOIN bookings b ON b.id = o.booking_id
		WHERE b.status = 'confirmed' AND b.end_time <= $1
		ORDER BY b.end_time ASC
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
