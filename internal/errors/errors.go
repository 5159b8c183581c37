// Package errors defines the engine's error taxonomy. Every error carries a
// stable code plus enough context (current state, attempted action, ids) for
// a caller to render an actionable message.
package errors

import (
	"errors"
	"fmt"

	"backstage/internal/models"
)

// Code is a stable, machine-readable error code.
type Code string

const (
	CodeIllegalTransition   Code = "ILLEGAL_TRANSITION"
	CodeDuplicateBooking    Code = "DUPLICATE_BOOKING"
	CodeScheduleConflict    Code = "SCHEDULE_CONFLICT"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeDuplicateReference  Code = "DUPLICATE_REFERENCE"
	CodeNotAuthorized       Code = "NOT_AUTHORIZED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeCommitFailed        Code = "COMMIT_FAILED"
)

// IllegalTransitionError reports an attempted transition the state machine
// does not allow from the booking's current state.
type IllegalTransitionError struct {
	BookingID int64
	From      models.BookingState
	Action    models.BookingAction
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot %s from state %s", e.BookingID, e.Action, e.From)
}

// DuplicateBookingError reports an active booking already existing for the
// same (organizer, counterparty, service, event) tuple.
type DuplicateBookingError struct {
	OrganizerID    int64
	CounterpartyID int64
	EventID        int64
	ServiceID      *int64
}

func (e *DuplicateBookingError) Error() string {
	return fmt.Sprintf("active booking already exists for organizer %d, counterparty %d, event %d",
		e.OrganizerID, e.CounterpartyID, e.EventID)
}

// ScheduleConflictError reports the organizer already holding an event on the
// same calendar date.
type ScheduleConflictError struct {
	OrganizerID int64
	Date        string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("organizer %d already has an event on %s", e.OrganizerID, e.Date)
}

// InsufficientBalanceError reports a debit that would drive a balance below
// zero.
type InsufficientBalanceError struct {
	WalletID  int64
	Balance   int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("wallet %d: balance %d is insufficient for debit of %d",
		e.WalletID, e.Balance, e.Requested)
}

// DuplicateReferenceError reports a ledger reference collision. A retried
// payment with the same reference lands here instead of double-applying.
type DuplicateReferenceError struct {
	Reference string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("transaction reference %q already exists", e.Reference)
}

// NotAuthorizedError reports an actor who may not perform the action.
type NotAuthorizedError struct {
	ActorID int64
	Action  string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("actor %d is not authorized to %s", e.ActorID, e.Action)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidArgumentError reports a request that fails validation before it
// reaches storage.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

// CommitFailedError wraps a persistence failure mid-commit. The whole atomic
// unit has been rolled back when this surfaces.
type CommitFailedError struct {
	Err error
}

func (e *CommitFailedError) Error() string { return fmt.Sprintf("commit failed: %v", e.Err) }
func (e *CommitFailedError) Unwrap() error { return e.Err }

// CodeOf maps an engine error to its stable code. Unknown errors map to
// COMMIT_FAILED, the generic persistence failure.
func CodeOf(err error) Code {
	var (
		illegal    *IllegalTransitionError
		dupBooking *DuplicateBookingError
		schedule   *ScheduleConflictError
		balance    *InsufficientBalanceError
		dupRef     *DuplicateReferenceError
		authz      *NotAuthorizedError
		notFound   *NotFoundError
		invalid    *InvalidArgumentError
	)
	switch {
	case errors.As(err, &illegal):
		return CodeIllegalTransition
	case errors.As(err, &dupBooking):
		return CodeDuplicateBooking
	case errors.As(err, &schedule):
		return CodeScheduleConflict
	case errors.As(err, &balance):
		return CodeInsufficientBalance
	case errors.As(err, &dupRef):
		return CodeDuplicateReference
	case errors.As(err, &authz):
		return CodeNotAuthorized
	case errors.As(err, &notFound):
		return CodeNotFound
	case errors.As(err, &invalid):
		return CodeInvalidArgument
	}
	return CodeCommitFailed
}
