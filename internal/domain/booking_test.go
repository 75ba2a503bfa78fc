package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testServices = NewServiceSet("recording", "mixing", "mastering")

func newTestBooking(t *testing.T, rng TimeRange, createdAt time.Time) *Booking {
	t.Helper()
	booking, err := NewBooking(NewBookingParams{
		ID:                 uuid.New(),
		StudioID:           uuid.New(),
		ClientID:           uuid.New(),
		AssignedEmployeeID: uuid.New(),
		ServiceType:        "recording",
		TimeRange:          rng,
		CreatedAt:          createdAt,
	}, testServices)
	require.NoError(t, err)
	return booking
}

func TestNewBookingValidatesServiceType(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))

	_, err := NewBooking(NewBookingParams{
		ID:          uuid.New(),
		ServiceType: "karaoke",
		TimeRange:   rng,
		CreatedAt:   now,
	}, testServices)

	var unsupported *UnsupportedServiceError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ServiceType("karaoke"), unsupported.Service)
}

func TestConfirm(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))

	booking := newTestBooking(t, rng, now)
	require.True(t, booking.IsPending())

	event, err := booking.Confirm(now)
	require.NoError(t, err)
	assert.Equal(t, BookingStatusConfirmed, booking.Status())
	require.NotNil(t, booking.ConfirmedAt())
	assert.True(t, booking.ConfirmedAt().Equal(now))

	confirmed, ok := event.(BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, booking.ID(), confirmed.BookingID)
	assert.True(t, confirmed.Start.Equal(rng.Start()))

	// Confirming a confirmed booking is rejected.
	_, err = booking.Confirm(now)
	var cannot *CannotConfirmError
	require.ErrorAs(t, err, &cannot)
	assert.Equal(t, BookingStatusConfirmed, cannot.Status)
}

func TestCancelCutoffBoundary(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("outside cutoff", func(t *testing.T) {
		rng := mustRange(t, now.Add(24*time.Hour+time.Second), now.Add(26*time.Hour))
		booking := newTestBooking(t, rng, now)

		event, err := booking.Cancel(now, "client request")
		require.NoError(t, err)
		assert.Equal(t, BookingStatusCancelled, booking.Status())

		cancelled, ok := event.(BookingCancelled)
		require.True(t, ok)
		assert.Equal(t, "client request", cancelled.Reason)
	})

	t.Run("inside cutoff", func(t *testing.T) {
		rng := mustRange(t, now.Add(23*time.Hour+59*time.Minute), now.Add(26*time.Hour))
		booking := newTestBooking(t, rng, now)

		_, err := booking.Cancel(now, "too late")
		var cannot *CannotCancelError
		require.ErrorAs(t, err, &cannot)
		assert.Equal(t, BookingStatusCreated, booking.Status(), "state unchanged after rejected cancel")
	})

	t.Run("inside cutoff even when confirmed", func(t *testing.T) {
		rng := mustRange(t, now.Add(2*time.Hour), now.Add(4*time.Hour))
		booking := newTestBooking(t, rng, now)
		_, err := booking.Confirm(now)
		require.NoError(t, err)

		_, err = booking.Cancel(now, "emergency")
		var cannot *CannotCancelError
		require.ErrorAs(t, err, &cannot)
	})
}

func TestRescheduleMonotonicityAndLimit(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
	booking := newTestBooking(t, rng, now)

	for i := 1; i <= RescheduleLimit; i++ {
		newRange := mustRange(t, now.Add(time.Duration(48+24*i)*time.Hour), now.Add(time.Duration(50+24*i)*time.Hour))
		event, err := booking.Reschedule(newRange, now)
		require.NoError(t, err)
		assert.Equal(t, i, booking.RescheduleCount())
		assert.Equal(t, BookingStatusRescheduled, booking.Status())
		assert.True(t, booking.TimeRange().Equal(newRange))

		rescheduled, ok := event.(BookingRescheduled)
		require.True(t, ok)
		assert.True(t, rescheduled.Start.Equal(newRange.Start()))
	}

	extra := mustRange(t, now.Add(200*time.Hour), now.Add(202*time.Hour))
	_, err := booking.Reschedule(extra, now)
	var limit *RescheduleLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, RescheduleLimit, limit.Count)
	assert.Equal(t, RescheduleLimit, booking.RescheduleCount(), "count never exceeds the limit")
}

func TestRescheduleRequiresReconfirmation(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
	booking := newTestBooking(t, rng, now)

	_, err := booking.Confirm(now)
	require.NoError(t, err)

	newRange := mustRange(t, now.Add(72*time.Hour), now.Add(74*time.Hour))
	_, err = booking.Reschedule(newRange, now)
	require.NoError(t, err)
	assert.True(t, booking.IsPending(), "a rescheduled booking awaits confirmation again")

	_, err = booking.Confirm(now)
	require.NoError(t, err)
	assert.Equal(t, BookingStatusConfirmed, booking.Status())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	newRange := mustRange(t, now.Add(100*time.Hour), now.Add(102*time.Hour))

	terminal := map[string]func(t *testing.T) *Booking{
		"cancelled": func(t *testing.T) *Booking {
			rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
			b := newTestBooking(t, rng, now)
			_, err := b.Cancel(now, "x")
			require.NoError(t, err)
			return b
		},
		"completed": func(t *testing.T) *Booking {
			rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
			b := newTestBooking(t, rng, now)
			_, err := b.Confirm(now)
			require.NoError(t, err)
			_, err = b.Complete(now.Add(51 * time.Hour))
			require.NoError(t, err)
			return b
		},
	}

	for name, build := range terminal {
		t.Run(name, func(t *testing.T) {
			booking := build(t)
			status := booking.Status()
			count := booking.RescheduleCount()

			_, err := booking.Confirm(now)
			assert.Error(t, err)
			_, err = booking.Cancel(now, "again")
			assert.Error(t, err)
			_, err = booking.Complete(now)
			assert.Error(t, err)
			_, err = booking.Reschedule(newRange, now)
			assert.Error(t, err)

			assert.Equal(t, status, booking.Status(), "no transition mutates a terminal booking")
			assert.Equal(t, count, booking.RescheduleCount())
			assert.False(t, booking.IsActive())
		})
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
	booking := newTestBooking(t, rng, now)

	_, err := booking.Complete(now)
	var cannot *CannotCompleteError
	require.ErrorAs(t, err, &cannot)
	assert.Equal(t, BookingStatusCreated, cannot.Status)
}

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	rng := mustRange(t, now.Add(48*time.Hour), now.Add(50*time.Hour))
	booking := newTestBooking(t, rng, now)
	_, err := booking.Confirm(now)
	require.NoError(t, err)

	restored := RestoreBooking(booking.Snapshot())
	assert.Equal(t, booking.ID(), restored.ID())
	assert.Equal(t, BookingStatusConfirmed, restored.Status())
	assert.True(t, restored.TimeRange().Equal(rng))
}
