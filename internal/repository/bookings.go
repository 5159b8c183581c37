package repository

import (
	"context"
	"database/sql"
	"time"

	"backstage/internal/database"
	"backstage/internal/errors"
	"backstage/internal/models"
)

type BookingRepository struct {
	q database.Querier
}

func NewBookingRepository(q database.Querier) *BookingRepository {
	return &BookingRepository{q: q}
}

const bookingColumns = `id, event_id, organizer_id, counterparty_id, service_id, status,
		offered_amount, final_amount, quantity,
		organizer_notes, counterparty_notes, special_requirements, cancellation_reason, payment_reference,
		created_at, updated_at, accepted_at, paid_at, completed_at, cancelled_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.EventID,
		&b.OrganizerID,
		&b.CounterpartyID,
		&b.ServiceID,
		&b.Status,
		&b.OfferedAmount,
		&b.FinalAmount,
		&b.Quantity,
		&b.OrganizerNotes,
		&b.CounterpartyNotes,
		&b.SpecialRequirements,
		&b.CancellationReason,
		&b.PaymentReference,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.AcceptedAt,
		&b.PaidAt,
		&b.CompletedAt,
		&b.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (event_id, organizer_id, counterparty_id, service_id, status,
		                      offered_amount, quantity, organizer_notes, special_requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRowContext(ctx, query,
		booking.EventID,
		booking.OrganizerID,
		booking.CounterpartyID,
		booking.ServiceID,
		booking.Status,
		booking.OfferedAmount,
		booking.Quantity,
		booking.OrganizerNotes,
		booking.SpecialRequirements,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if uniqueViolation(err) == constraintBookingTuple {
		return &errors.DuplicateBookingError{
			OrganizerID:    booking.OrganizerID,
			CounterpartyID: booking.CounterpartyID,
			EventID:        booking.EventID,
			ServiceID:      booking.ServiceID,
		}
	}
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "booking", ID: id}
	}
	return booking, err
}

// GetForUpdate loads the booking with an exclusive row lock so concurrent
// transition attempts on the same booking serialize.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "booking", ID: id}
	}
	return booking, err
}

func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, final_amount = $2, counterparty_notes = $3, cancellation_reason = $4,
		    payment_reference = $5, accepted_at = $6, paid_at = $7, completed_at = $8,
		    cancelled_at = $9, updated_at = NOW()
		WHERE id = $10`

	_, err := r.q.ExecContext(ctx, query,
		booking.Status,
		booking.FinalAmount,
		booking.CounterpartyNotes,
		booking.CancellationReason,
		booking.PaymentReference,
		booking.AcceptedAt,
		booking.PaidAt,
		booking.CompletedAt,
		booking.CancelledAt,
		booking.ID,
	)
	return err
}

func (r *BookingRepository) ListByActor(ctx context.Context, actorID int64) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE organizer_id = $1 OR counterparty_id = $1
		ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// ListPaidDue returns PAID bookings whose event started before the cutoff,
// oldest first. The completion worker drives these to COMPLETED.
func (r *BookingRepository) ListPaidDue(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	query := `
		SELECT ` + prefixedBookingColumns("b") + `
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.status = 'PAID' AND e.starts_at <= $1
		ORDER BY e.starts_at ASC`

	rows, err := r.q.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) CountActive(ctx context.Context, organizerID, counterpartyID int64, serviceID *int64, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE organizer_id = $1 AND counterparty_id = $2 AND event_id = $3
		  AND COALESCE(service_id, 0) = COALESCE($4, 0)
		  AND status NOT IN ('DECLINED', 'CANCELLED')`

	var count int
	err := r.q.QueryRowContext(ctx, query, organizerID, counterpartyID, eventID, serviceID).Scan(&count)
	return count, err
}

func prefixedBookingColumns(alias string) string {
	return alias + `.id, ` + alias + `.event_id, ` + alias + `.organizer_id, ` + alias + `.counterparty_id, ` +
		alias + `.service_id, ` + alias + `.status, ` + alias + `.offered_amount, ` + alias + `.final_amount, ` +
		alias + `.quantity, ` + alias + `.organizer_notes, ` + alias + `.counterparty_notes, ` +
		alias + `.special_requirements, ` + alias + `.cancellation_reason, ` + alias + `.payment_reference, ` +
		alias + `.created_at, ` + alias + `.updated_at, ` + alias + `.accepted_at, ` + alias + `.paid_at, ` +
		alias + `.completed_at, ` + alias + `.cancelled_at`
}
