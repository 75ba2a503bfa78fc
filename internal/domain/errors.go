package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingTimezone is returned when a range is built from unset instants.
var ErrMissingTimezone = errors.New("time range requires fully specified instants")

// ErrRefundBeforePayment is returned when a refund is requested with an
// instant earlier than the payment's paid_at.
var ErrRefundBeforePayment = errors.New("refund instant precedes payment instant")

// InvalidRangeError is returned when end is not strictly after start.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range: end (%s) must be after start (%s)", e.End, e.Start)
}

// UnsupportedServiceError is returned when a booking is constructed with a
// service type the studio does not allow for booking.
type UnsupportedServiceError struct {
	Service ServiceType
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("service %q is not allowed for booking", e.Service)
}

// InvalidAmountError is returned when a payment amount is not positive or
// carries more than two fractional digits.
type InvalidAmountError struct {
	Amount decimal.Decimal
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount %s: %s", e.Amount, e.Reason)
}

// CannotConfirmError is returned when a booking is confirmed outside a
// pending state.
type CannotConfirmError struct {
	Status BookingStatus
}

func (e *CannotConfirmError) Error() string {
	return fmt.Sprintf("booking in status %q cannot be confirmed", e.Status)
}

// CannotCancelError is returned when a booking cannot be cancelled, either
// because it is terminal or because the cancellation cutoff has been reached.
type CannotCancelError struct {
	Status BookingStatus
	Reason string
}

func (e *CannotCancelError) Error() string {
	return fmt.Sprintf("booking in status %q cannot be cancelled: %s", e.Status, e.Reason)
}

// CannotCompleteError is returned when a booking is completed while not
// confirmed.
type CannotCompleteError struct {
	Status BookingStatus
}

func (e *CannotCompleteError) Error() string {
	return fmt.Sprintf("booking in status %q cannot be completed", e.Status)
}

// CannotRescheduleError is returned when a booking is rescheduled while not
// active.
type CannotRescheduleError struct {
	Status BookingStatus
}

func (e *CannotRescheduleError) Error() string {
	return fmt.Sprintf("booking in status %q cannot be rescheduled", e.Status)
}

// RescheduleLimitError is returned once a booking has exhausted its
// reschedule allowance.
type RescheduleLimitError struct {
	Count int
	Limit int
}

func (e *RescheduleLimitError) Error() string {
	return fmt.Sprintf("reschedule limit exceeded: %d/%d", e.Count, e.Limit)
}

// AlreadyPaidError is returned when a payment outside PENDING is marked paid.
type AlreadyPaidError struct {
	Status PaymentStatus
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("payment in status %q cannot be paid", e.Status)
}

// CannotFailError is returned when a payment outside PENDING is marked failed.
type CannotFailError struct {
	Status PaymentStatus
}

func (e *CannotFailError) Error() string {
	return fmt.Sprintf("payment in status %q cannot be marked failed", e.Status)
}

// CannotRefundError is returned when a refund is requested for a payment
// that is not PAID.
type CannotRefundError struct {
	Status PaymentStatus
}

func (e *CannotRefundError) Error() string {
	return fmt.Sprintf("payment in status %q cannot be refunded", e.Status)
}
