package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingOrder is the aggregate root binding one Booking to its one Payment.
// It owns no state beyond its two children; its responsibility is that
// transitions touching both are requested together, and that the
// compensating-action policy is applied when one half of a combined
// operation fails.
type BookingOrder struct {
	id      uuid.UUID
	booking *Booking
	payment *Payment
}

// NewBookingOrder assembles the aggregate and runs the cross-entity
// consistency check.
func NewBookingOrder(id uuid.UUID, booking *Booking, payment *Payment) (*BookingOrder, error) {
	if booking == nil || payment == nil {
		return nil, fmt.Errorf("booking order %s requires both a booking and a payment", id)
	}
	o := &BookingOrder{id: id, booking: booking, payment: payment}
	if err := o.ensureConsistency(); err != nil {
		return nil, err
	}
	return o, nil
}

// ensureConsistency is the single seam for cross-entity invariants (for
// example "payment currency must match the studio's configured currency").
// No such rule is enforced in the current model.
func (o *BookingOrder) ensureConsistency() error {
	return nil
}

func (o *BookingOrder) ID() uuid.UUID     { return o.id }
func (o *BookingOrder) Booking() *Booking { return o.booking }
func (o *BookingOrder) Payment() *Payment { return o.payment }

// Confirm confirms the underlying booking. Confirmation does not require any
// payment state: cash-on-delivery bookings are paid at the studio.
func (o *BookingOrder) Confirm(now time.Time) ([]Event, error) {
	event, err := o.booking.Confirm(now)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// CancelWithRefund cancels the booking and then attempts a refund as a
// best-effort second step. The cancellation is mandatory: if it fails the
// whole operation fails and no refund is attempted. A refund failure is
// swallowed, since a client's right to cancel must never be blocked by a
// payment-side inconsistency, and only the booking events are returned.
func (o *BookingOrder) CancelWithRefund(now time.Time, reason string) ([]Event, error) {
	cancelled, err := o.booking.Cancel(now, reason)
	if err != nil {
		return nil, err
	}
	events := []Event{cancelled}

	if o.payment.IsPaid() {
		refunded, err := o.payment.Refund(now, "auto: "+reason)
		if err != nil {
			// Cancellation stands; the caller sees the shorter event list.
			return events, nil
		}
		events = append(events, refunded)
	}
	return events, nil
}

// Complete completes the underlying booking.
func (o *BookingOrder) Complete(now time.Time) ([]Event, error) {
	event, err := o.booking.Complete(now)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// Reschedule moves the underlying booking to a new range. Conflict checking
// against other bookings is the caller's job.
func (o *BookingOrder) Reschedule(newRange TimeRange, now time.Time) ([]Event, error) {
	event, err := o.booking.Reschedule(newRange, now)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// MarkPaid marks the underlying payment as paid.
func (o *BookingOrder) MarkPaid(now time.Time) ([]Event, error) {
	event, err := o.payment.MarkPaid(now)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// MarkFailed marks the underlying payment attempt as failed.
func (o *BookingOrder) MarkFailed(now time.Time) ([]Event, error) {
	event, err := o.payment.MarkFailed(now)
	if err != nil {
		return nil, err
	}
	return []Event{event}, nil
}
