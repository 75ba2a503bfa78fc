package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the monetary side of a booking.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Currency is the payment currency.
type Currency string

const (
	CurrencyRUB Currency = "rub"
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
)

// PaymentMethod is how the client pays.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// Payment tracks the money funding a booking. PAID and REFUNDED are reachable
// only in that order; FAILED only from PENDING.
type Payment struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	amount     decimal.Decimal
	currency   Currency
	method     PaymentMethod
	status     PaymentStatus
	createdAt  time.Time
	paidAt     *time.Time
	refundedAt *time.Time
	failedAt   *time.Time
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{Amount: amount, Reason: "amount must be positive"}
	}
	if !amount.Equal(amount.Round(2)) {
		return &InvalidAmountError{Amount: amount, Reason: "amount must have at most 2 decimal places"}
	}
	return nil
}

// NewPayment constructs a pending payment, validating the amount against the
// currency minor-unit precision.
func NewPayment(id, bookingID uuid.UUID, amount decimal.Decimal, currency Currency, method PaymentMethod, createdAt time.Time) (*Payment, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return &Payment{
		id:        id,
		bookingID: bookingID,
		amount:    amount,
		currency:  currency,
		method:    method,
		status:    PaymentStatusPending,
		createdAt: createdAt,
	}, nil
}

// PaymentSnapshot is the persisted form of a payment.
type PaymentSnapshot struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	Amount     decimal.Decimal
	Currency   Currency
	Method     PaymentMethod
	Status     PaymentStatus
	CreatedAt  time.Time
	PaidAt     *time.Time
	RefundedAt *time.Time
	FailedAt   *time.Time
}

// RestorePayment rebuilds a payment from its snapshot.
func RestorePayment(s PaymentSnapshot) *Payment {
	return &Payment{
		id:         s.ID,
		bookingID:  s.BookingID,
		amount:     s.Amount,
		currency:   s.Currency,
		method:     s.Method,
		status:     s.Status,
		createdAt:  s.CreatedAt,
		paidAt:     s.PaidAt,
		refundedAt: s.RefundedAt,
		failedAt:   s.FailedAt,
	}
}

// Snapshot returns the persisted form of the payment.
func (p *Payment) Snapshot() PaymentSnapshot {
	return PaymentSnapshot{
		ID:         p.id,
		BookingID:  p.bookingID,
		Amount:     p.amount,
		Currency:   p.currency,
		Method:     p.method,
		Status:     p.status,
		CreatedAt:  p.createdAt,
		PaidAt:     p.paidAt,
		RefundedAt: p.refundedAt,
		FailedAt:   p.failedAt,
	}
}

func (p *Payment) ID() uuid.UUID           { return p.id }
func (p *Payment) BookingID() uuid.UUID    { return p.bookingID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) Currency() Currency      { return p.currency }
func (p *Payment) Method() PaymentMethod   { return p.method }
func (p *Payment) Status() PaymentStatus   { return p.status }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) PaidAt() *time.Time      { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time  { return p.refundedAt }
func (p *Payment) FailedAt() *time.Time    { return p.failedAt }

func (p *Payment) IsPending() bool  { return p.status == PaymentStatusPending }
func (p *Payment) IsPaid() bool     { return p.status == PaymentStatusPaid }
func (p *Payment) IsRefunded() bool { return p.status == PaymentStatusRefunded }
func (p *Payment) IsFailed() bool   { return p.status == PaymentStatusFailed }

// MarkPaid moves a pending payment to PAID.
func (p *Payment) MarkPaid(now time.Time) (Event, error) {
	if !p.IsPending() {
		return nil, &AlreadyPaidError{Status: p.status}
	}
	p.status = PaymentStatusPaid
	p.paidAt = &now
	return PaymentPaid{
		EventMeta: newEventMeta(now),
		PaymentID: p.id,
		BookingID: p.bookingID,
		Amount:    p.amount,
	}, nil
}

// MarkFailed moves a pending payment to FAILED.
func (p *Payment) MarkFailed(now time.Time) (Event, error) {
	if !p.IsPending() {
		return nil, &CannotFailError{Status: p.status}
	}
	p.status = PaymentStatusFailed
	p.failedAt = &now
	return PaymentFailed{
		EventMeta: newEventMeta(now),
		PaymentID: p.id,
		BookingID: p.bookingID,
		Amount:    p.amount,
	}, nil
}

// Refund moves a paid payment to REFUNDED. The refund instant must not
// precede the payment instant.
func (p *Payment) Refund(now time.Time, reason string) (Event, error) {
	if !p.IsPaid() {
		return nil, &CannotRefundError{Status: p.status}
	}
	if p.paidAt != nil && now.Before(*p.paidAt) {
		return nil, ErrRefundBeforePayment
	}
	p.status = PaymentStatusRefunded
	p.refundedAt = &now
	return PaymentRefunded{
		EventMeta: newEventMeta(now),
		PaymentID: p.id,
		BookingID: p.bookingID,
		Amount:    p.amount,
		Reason:    reason,
	}, nil
}
