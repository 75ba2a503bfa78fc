package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/messaging"
)

const consumerGroup = "studio-booking-notifications"

// Worker consumes published domain events and forwards a readable message to
// the notifier. Delivery failures are logged, never retried into the broker.
type Worker struct {
	subscriber messaging.Subscriber
	notifier   Notifier
}

func NewWorker(subscriber messaging.Subscriber, notifier Notifier) *Worker {
	return &Worker{subscriber: subscriber, notifier: notifier}
}

// Run starts one consumer goroutine per topic and blocks until the context
// is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for _, topic := range messaging.Topics() {
		go w.subscriber.Consume(ctx, topic, consumerGroup, w.handle)
	}
	<-ctx.Done()
}

func (w *Worker) handle(ctx context.Context, eventType string, payload []byte) error {
	event, err := domain.DecodeEvent(eventType, payload)
	if err != nil {
		return err
	}

	subject, message := render(event)
	if subject == "" {
		slog.Warn("No notification template for event", "event", eventType)
		return nil
	}
	return w.notifier.Notify(ctx, subject, message)
}

func render(event domain.Event) (subject, message string) {
	const timeLayout = "2006-01-02 15:04"

	switch e := event.(type) {
	case domain.BookingConfirmed:
		return "Booking confirmed",
			fmt.Sprintf("Booking %s: %s - %s", e.BookingID, e.Start.Format(timeLayout), e.End.Format(timeLayout))
	case domain.BookingCancelled:
		msg := fmt.Sprintf("Booking %s was cancelled", e.BookingID)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return "Booking cancelled", msg
	case domain.BookingCompleted:
		return "Booking completed", fmt.Sprintf("Booking %s is complete", e.BookingID)
	case domain.BookingRescheduled:
		return "Booking rescheduled",
			fmt.Sprintf("Booking %s moved to %s - %s, please re-confirm", e.BookingID, e.Start.Format(timeLayout), e.End.Format(timeLayout))
	case domain.PaymentPaid:
		return "Payment received", fmt.Sprintf("Payment %s for %s received", e.PaymentID, e.Amount)
	case domain.PaymentFailed:
		return "Payment failed", fmt.Sprintf("Payment %s for %s failed", e.PaymentID, e.Amount)
	case domain.PaymentRefunded:
		msg := fmt.Sprintf("Payment %s for %s refunded", e.PaymentID, e.Amount)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return "Payment refunded", msg
	}
	return "", ""
}
