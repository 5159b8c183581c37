// Package store defines the persistence surface the engine drives. The
// Postgres repositories and the in-memory store both implement it; services
// only ever see these interfaces.
package store

import (
	"context"
	"time"

	"backstage/internal/models"
)

// Store is the read surface plus the entry point for atomic units.
type Store interface {
	// InTx runs fn inside one atomic unit. Everything fn does through the Tx
	// commits together or not at all; any error from fn rolls the unit back.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookingsByActor(ctx context.Context, actorID int64) ([]models.Booking, error)
	// ListPaidBookingsDue returns PAID bookings whose event started before
	// the cutoff, oldest first. Used by the completion worker.
	ListPaidBookingsDue(ctx context.Context, cutoff time.Time) ([]models.Booking, error)

	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error)

	GetWallet(ctx context.Context, walletID int64) (*models.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID int64) (*models.Wallet, error)
	ListTransactions(ctx context.Context, walletID int64, filter models.TransactionFilter) ([]models.Transaction, error)
	ListAuditEntries(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

// Tx is the write surface available inside an atomic unit. Row-lock methods
// serialize concurrent work on the same booking or wallet; operations on
// unrelated rows never block each other.
//
// UpdateWalletBalances exists here so the ledger can persist the balances it
// derives; no other package may call it.
type Tx interface {
	InsertEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CountEventsOnDate(ctx context.Context, organizerID int64, date time.Time, excludingEventID int64) (int, error)

	// InsertBooking persists a new booking. A second active booking for the
	// same (organizer, counterparty, service, event) tuple fails with
	// DuplicateBookingError from the storage-level unique constraint.
	InsertBooking(ctx context.Context, booking *models.Booking) error
	// GetBookingForUpdate loads the booking under an exclusive lock for the
	// remainder of the unit.
	GetBookingForUpdate(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	CountActiveBookings(ctx context.Context, organizerID, counterpartyID int64, serviceID *int64, eventID int64) (int, error)

	// GetWalletForUpdate loads the user's wallet under an exclusive lock,
	// creating it lazily on first financial event.
	GetWalletForUpdate(ctx context.Context, userID int64) (*models.Wallet, error)
	GetWalletByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error)
	UpdateWalletBalances(ctx context.Context, wallet *models.Wallet) error

	// InsertTransaction appends one immutable ledger entry. A reference
	// collision fails with DuplicateReferenceError.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)

	InsertAuditEntry(ctx context.Context, entry *models.AuditLogEntry) error
}
