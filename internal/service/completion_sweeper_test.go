package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundlane/studio-booking-backend/internal/domain"
)

func TestSweepCompletesEndedBookings(t *testing.T) {
	f := newServiceFixture(t)

	ended := f.createOrder(t, f.now.Add(48*time.Hour), f.now.Add(50*time.Hour))
	ongoing := f.createOrder(t, f.now.Add(49*time.Hour), f.now.Add(60*time.Hour))
	require.NoError(t, f.svc.Confirm(context.Background(), ended.ID()))
	require.NoError(t, f.svc.Confirm(context.Background(), ongoing.ID()))

	sweeper := NewCompletionSweeper(f.orders, f.svc, "")
	f.now = f.now.Add(51 * time.Hour)
	sweeper.Sweep(context.Background())

	stored, _, err := f.orders.FindByID(context.Background(), ended.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, stored.Booking().Status())

	stored, _, err = f.orders.FindByID(context.Background(), ongoing.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Booking().Status(), "ongoing booking left alone")
}

func TestSweepSkipsUnconfirmed(t *testing.T) {
	f := newServiceFixture(t)
	pending := f.createOrder(t, f.now.Add(2*time.Hour), f.now.Add(4*time.Hour))

	sweeper := NewCompletionSweeper(f.orders, f.svc, "")
	f.now = f.now.Add(5 * time.Hour)
	sweeper.Sweep(context.Background())

	stored, _, err := f.orders.FindByID(context.Background(), pending.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCreated, stored.Booking().Status())
}
