package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event represents an immutable domain event emitted by a successful
// transition. The core never publishes events itself; mutating operations
// return them and ownership passes to the caller.
type Event interface {
	EventType() string
}

// EventMeta carries the identity fields shared by every event. OccurredAt is
// the instant passed into the transition, not wall-clock time, so a single
// logical operation stamps all of its events consistently.
type EventMeta struct {
	EventID    uuid.UUID `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEventMeta(occurredAt time.Time) EventMeta {
	return EventMeta{EventID: uuid.New(), OccurredAt: occurredAt}
}

// BookingConfirmed is emitted when a pending booking is confirmed.
type BookingConfirmed struct {
	EventMeta
	BookingID uuid.UUID `json:"booking_id"`
	StudioID  uuid.UUID `json:"studio_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

func (e BookingConfirmed) EventType() string { return "BookingConfirmed" }

// BookingCancelled is emitted when an active booking is cancelled.
type BookingCancelled struct {
	EventMeta
	BookingID uuid.UUID `json:"booking_id"`
	StudioID  uuid.UUID `json:"studio_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
}

func (e BookingCancelled) EventType() string { return "BookingCancelled" }

// BookingCompleted is emitted when a confirmed booking is completed.
type BookingCompleted struct {
	EventMeta
	BookingID uuid.UUID `json:"booking_id"`
	StudioID  uuid.UUID `json:"studio_id"`
	ClientID  uuid.UUID `json:"client_id"`
}

func (e BookingCompleted) EventType() string { return "BookingCompleted" }

// BookingRescheduled is emitted when a booking is moved to a new range.
type BookingRescheduled struct {
	EventMeta
	BookingID uuid.UUID `json:"booking_id"`
	StudioID  uuid.UUID `json:"studio_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

func (e BookingRescheduled) EventType() string { return "BookingRescheduled" }

// PaymentPaid is emitted when a pending payment is paid.
type PaymentPaid struct {
	EventMeta
	PaymentID uuid.UUID       `json:"payment_id"`
	BookingID uuid.UUID       `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (e PaymentPaid) EventType() string { return "PaymentPaid" }

// PaymentFailed is emitted when a pending payment attempt fails.
type PaymentFailed struct {
	EventMeta
	PaymentID uuid.UUID       `json:"payment_id"`
	BookingID uuid.UUID       `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (e PaymentFailed) EventType() string { return "PaymentFailed" }

// PaymentRefunded is emitted when a paid payment is refunded.
type PaymentRefunded struct {
	EventMeta
	PaymentID uuid.UUID       `json:"payment_id"`
	BookingID uuid.UUID       `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

func (e PaymentRefunded) EventType() string { return "PaymentRefunded" }

// DecodeEvent rebuilds an event from its type tag and JSON payload. The set
// of tags is closed; anything else is an error.
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	var (
		event Event
		err   error
	)
	switch eventType {
	case "BookingConfirmed":
		var e BookingConfirmed
		err = json.Unmarshal(payload, &e)
		event = e
	case "BookingCancelled":
		var e BookingCancelled
		err = json.Unmarshal(payload, &e)
		event = e
	case "BookingCompleted":
		var e BookingCompleted
		err = json.Unmarshal(payload, &e)
		event = e
	case "BookingRescheduled":
		var e BookingRescheduled
		err = json.Unmarshal(payload, &e)
		event = e
	case "PaymentPaid":
		var e PaymentPaid
		err = json.Unmarshal(payload, &e)
		event = e
	case "PaymentFailed":
		var e PaymentFailed
		err = json.Unmarshal(payload, &e)
		event = e
	case "PaymentRefunded":
		var e PaymentRefunded
		err = json.Unmarshal(payload, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", eventType, err)
	}
	return event, nil
}
