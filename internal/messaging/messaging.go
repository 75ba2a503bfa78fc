package messaging

import (
	"context"

	"github.com/soundlane/studio-booking-backend/internal/domain"
)

// Publisher defines an interface for publishing domain events to a message
// broker. The domain core only returns events; durable publication is owned
// here.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event domain.Event) error
}

// Subscriber defines an interface for subscribing to a message topic.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, eventType string, payload []byte) error)
}

// TopicFor maps an event to the topic it is published on. The event set is
// closed; an unmapped event yields "" and must not be published.
func TopicFor(event domain.Event) string {
	switch event.(type) {
	case domain.BookingConfirmed:
		return "bookings.confirmed"
	case domain.BookingCancelled:
		return "bookings.cancelled"
	case domain.BookingCompleted:
		return "bookings.completed"
	case domain.BookingRescheduled:
		return "bookings.rescheduled"
	case domain.PaymentPaid:
		return "payments.paid"
	case domain.PaymentFailed:
		return "payments.failed"
	case domain.PaymentRefunded:
		return "payments.refunded"
	}
	return ""
}

// Topics lists every topic the service publishes on.
func Topics() []string {
	return []string{
		"bookings.confirmed",
		"bookings.cancelled",
		"bookings.completed",
		"bookings.rescheduled",
		"payments.paid",
		"payments.failed",
		"payments.refunded",
	}
}
