package service

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/soundlane/studio-booking-backend/internal/repository"
)

// CompletionSweeper owns the temporal gate the booking entity deliberately
// leaves to its caller: on a schedule it completes confirmed bookings whose
// range has ended.
type CompletionSweeper struct {
	orders repository.OrderRepository
	svc    *BookingService
	spec   string
	batch  int
	cron   *cron.Cron
}

func NewCompletionSweeper(orders repository.OrderRepository, svc *BookingService, spec string) *CompletionSweeper {
	if spec == "" {
		spec = "@every 5m"
	}
	return &CompletionSweeper{
		orders: orders,
		svc:    svc,
		spec:   spec,
		batch:  100,
	}
}

// Start registers the sweep and starts the scheduler. It returns immediately;
// Stop drains a running sweep.
func (s *CompletionSweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() { s.Sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Completion sweeper started", "spec", s.spec)
	return nil
}

func (s *CompletionSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep completes every confirmed booking whose range ended before now. One
// failing order does not stop the rest of the batch.
func (s *CompletionSweeper) Sweep(ctx context.Context) {
	now := s.svc.clock()
	ids, err := s.orders.FindDueCompletion(ctx, now, s.batch)
	if err != nil {
		slog.Error("Sweep: failed to list due bookings", "err", err)
		return
	}
	for _, id := range ids {
		if err := s.svc.Complete(ctx, id); err != nil {
			slog.Error("Sweep: failed to complete booking order", "order_id", id, "err", err)
		}
	}
	if len(ids) > 0 {
		slog.Info("Sweep: completed ended bookings", "count", len(ids))
	}
}
