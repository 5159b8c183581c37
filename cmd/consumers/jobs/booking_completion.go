package jobs

import (
	"context"
	"log/slog"
	"time"

	"backstage/internal/models"
	"backstage/internal/service"
	"backstage/internal/store"
)

// BookingCompletionJob sweeps paid bookings whose event has started and
// drives them through the complete transition, releasing escrow to the
// counterparty. Each booking goes through the same service path as an API
// call, so locking, policy and publishing all apply.
type BookingCompletionJob struct {
	store    store.Store
	bookings *service.BookingService
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
}

func NewBookingCompletionJob(st store.Store, bookings *service.BookingService, interval time.Duration) *BookingCompletionJob {
	return &BookingCompletionJob{
		store:    st,
		bookings: bookings,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start begins the background sweep.
func (j *BookingCompletionJob) Start(ctx context.Context) {
	slog.Info("Starting booking completion job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	// Run initial sweep immediately
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Booking completion job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job.
func (j *BookingCompletionJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *BookingCompletionJob) sweep(ctx context.Context) {
	due, err := j.store.ListPaidBookingsDue(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to list bookings due for completion", "error", err)
		return
	}

	if len(due) == 0 {
		slog.Debug("No bookings due for completion")
		return
	}

	slog.Info("Found bookings due for completion", "count", len(due))

	for _, booking := range due {
		if err := j.complete(ctx, &booking); err != nil {
			slog.Error("Failed to complete booking",
				"error", err,
				"booking_id", booking.ID,
				"event_id", booking.EventID)
		} else {
			slog.Info("Booking completed",
				"booking_id", booking.ID,
				"event_id", booking.EventID)
		}
	}
}

func (j *BookingCompletionJob) complete(ctx context.Context, booking *models.Booking) error {
	_, err := j.bookings.Transition(ctx, models.Actor{Role: models.RoleSystem}, models.ActionComplete,
		&models.TransitionRequest{BookingID: booking.ID})
	return err
}
