package repository

import (
	stderrors "errors"

	"github.com/lib/pq"
)

// Constraint names from the migrations. Unique violations on these are how
// the real conflict guards fire; the typed errors the engine exposes are
// produced by the inserts that hit them.
const (
	constraintBookingTuple  = "bookings_active_tuple_key"
	constraintTxReference   = "transactions_reference_key"
	constraintOrganizerDate = "events_organizer_date_key"
)

// uniqueViolation returns the violated constraint name when err is a
// Postgres unique violation, "" otherwise.
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint
	}
	return ""
}
