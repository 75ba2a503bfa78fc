package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundlane/studio-booking-backend/internal/domain"
)

func TestTopicForCoversEveryEvent(t *testing.T) {
	events := []domain.Event{
		domain.BookingConfirmed{},
		domain.BookingCancelled{},
		domain.BookingCompleted{},
		domain.BookingRescheduled{},
		domain.PaymentPaid{},
		domain.PaymentFailed{},
		domain.PaymentRefunded{},
	}

	declared := Topics()
	assert.Len(t, declared, len(events))

	for _, event := range events {
		topic := TopicFor(event)
		assert.NotEmpty(t, topic, event.EventType())
		assert.Contains(t, declared, topic, event.EventType())
	}
}

type unmappedEvent struct{}

func (unmappedEvent) EventType() string { return "Unmapped" }

func TestTopicForUnmappedEvent(t *testing.T) {
	assert.Empty(t, TopicFor(unmappedEvent{}))
}
