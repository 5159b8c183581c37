package service

import (
	"backstage/internal/errors"
	"backstage/internal/models"
)

// The transition table is the single authority on booking lifecycle. A
// (state, action) pair absent from this map is illegal, full stop.
type transitionKey struct {
	from   models.BookingState
	action models.BookingAction
}

var transitions = map[transitionKey]models.BookingState{
	{models.BookingPending, models.ActionAccept}:   models.BookingAccepted,
	{models.BookingPending, models.ActionDecline}:  models.BookingDeclined,
	{models.BookingPending, models.ActionCancel}:   models.BookingCancelled,
	{models.BookingAccepted, models.ActionPay}:     models.BookingPaid,
	{models.BookingAccepted, models.ActionCancel}:  models.BookingCancelled,
	{models.BookingPaid, models.ActionComplete}:    models.BookingCompleted,
	{models.BookingPaid, models.ActionCancel}:      models.BookingCancelled,
}

// nextState resolves the destination state for an action from the current
// state, or fails with IllegalTransitionError.
func nextState(booking *models.Booking, action models.BookingAction) (models.BookingState, error) {
	to, ok := transitions[transitionKey{from: booking.Status, action: action}]
	if !ok {
		return "", &errors.IllegalTransitionError{
			BookingID: booking.ID,
			From:      booking.Status,
			Action:    action,
		}
	}
	return to, nil
}

// authorize verifies the actor may trigger this action from this state.
// Admins may trigger any legal transition (every admin-triggered transition
// is audited); the system actor drives completion.
func authorize(actor models.Actor, booking *models.Booking, action models.BookingAction) error {
	if actor.Admin() {
		return nil
	}

	allowed := false
	switch action {
	case models.ActionAccept, models.ActionDecline:
		allowed = actor.ID == booking.CounterpartyID
	case models.ActionPay:
		allowed = actor.ID == booking.OrganizerID
	case models.ActionComplete:
		allowed = actor.System() || actor.ID == booking.OrganizerID
	case models.ActionCancel:
		if booking.Status == models.BookingPending {
			// Nothing was ever committed to; only the organizer backs out.
			allowed = actor.ID == booking.OrganizerID
		} else {
			allowed = actor.ID == booking.OrganizerID || actor.ID == booking.CounterpartyID
		}
	}

	if !allowed {
		return &errors.NotAuthorizedError{ActorID: actor.ID, Action: string(action)}
	}
	return nil
}
