// Package guard enforces scheduling and uniqueness invariants before a
// booking or event commit is allowed. The checks are pure validation and run
// inside the same transaction as the insert they protect; the storage-level
// unique indexes remain the authoritative guard, so a race that slips past a
// check still fails with the same typed error at insert time.
package guard

import (
	"context"
	"time"

	"backstage/internal/errors"
	"backstage/internal/store"
)

type ConflictGuard struct{}

func New() *ConflictGuard {
	return &ConflictGuard{}
}

// CheckNoDuplicateBooking fails when an active (non-declined, non-cancelled)
// booking already exists for the exact (organizer, counterparty, service,
// event) tuple.
func (g *ConflictGuard) CheckNoDuplicateBooking(ctx context.Context, tx store.Tx, organizerID, counterpartyID int64, serviceID *int64, eventID int64) error {
	count, err := tx.CountActiveBookings(ctx, organizerID, counterpartyID, serviceID, eventID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &errors.DuplicateBookingError{
			OrganizerID:    organizerID,
			CounterpartyID: counterpartyID,
			EventID:        eventID,
			ServiceID:      serviceID,
		}
	}
	return nil
}

// CheckNoDateConflict fails when the organizer already owns another event on
// the same calendar date. excludingEventID skips the event being edited;
// pass 0 on creation.
func (g *ConflictGuard) CheckNoDateConflict(ctx context.Context, tx store.Tx, organizerID int64, eventDate time.Time, excludingEventID int64) error {
	count, err := tx.CountEventsOnDate(ctx, organizerID, eventDate, excludingEventID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &errors.ScheduleConflictError{
			OrganizerID: organizerID,
			Date:        eventDate.Format("2006-01-02"),
		}
	}
	return nil
}
