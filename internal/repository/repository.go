// Package repository implements the store interfaces on Postgres. Row locks
// (SELECT ... FOR UPDATE) serialize concurrent work on the same booking or
// wallet; partial unique indexes are the real conflict guards.
package repository

import (
	"context"
	"time"

	"backstage/internal/database"
	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"
)

// Store is the Postgres-backed persistence layer.
type Store struct {
	db           *database.DB
	bookings     *BookingRepository
	events       *EventRepository
	wallets      *WalletRepository
	transactions *TransactionRepository
	audit        *AuditRepository
}

func NewStore(db *database.DB) *Store {
	return &Store{
		db:           db,
		bookings:     NewBookingRepository(db),
		events:       NewEventRepository(db),
		wallets:      NewWalletRepository(db),
		transactions: NewTransactionRepository(db),
		audit:        NewAuditRepository(db),
	}
}

// InTx runs fn inside one database transaction. Any error from fn rolls the
// whole unit back; commit failures surface as CommitFailedError so a booking
// can never be marked paid without its ledger entries.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.CommitFailedError{Err: err}
	}

	t := &Tx{
		bookings:     NewBookingRepository(sqlTx),
		events:       NewEventRepository(sqlTx),
		wallets:      NewWalletRepository(sqlTx),
		transactions: NewTransactionRepository(sqlTx),
		audit:        NewAuditRepository(sqlTx),
	}

	if err := fn(t); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return &errors.CommitFailedError{Err: err}
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Store) ListBookingsByActor(ctx context.Context, actorID int64) ([]models.Booking, error) {
	return s.bookings.ListByActor(ctx, actorID)
}

func (s *Store) ListPaidBookingsDue(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return s.bookings.ListPaidDue(ctx, cutoff)
}

func (s *Store) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *Store) ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error) {
	return s.events.ListByOrganizer(ctx, organizerID)
}

func (s *Store) GetWallet(ctx context.Context, walletID int64) (*models.Wallet, error) {
	return s.wallets.GetByID(ctx, walletID)
}

func (s *Store) GetWalletByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	return s.wallets.GetByUserID(ctx, userID)
}

func (s *Store) ListTransactions(ctx context.Context, walletID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	return s.transactions.ListByWallet(ctx, wallet.UserID, filter)
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return s.audit.List(ctx, limit)
}

// Tx is the write surface of one in-flight database transaction.
type Tx struct {
	bookings     *BookingRepository
	events       *EventRepository
	wallets      *WalletRepository
	transactions *TransactionRepository
	audit        *AuditRepository
}

func (t *Tx) InsertEvent(ctx context.Context, event *models.Event) error {
	return t.events.Insert(ctx, event)
}

func (t *Tx) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return t.events.GetByID(ctx, id)
}

func (t *Tx) CountEventsOnDate(ctx context.Context, organizerID int64, date time.Time, excludingEventID int64) (int, error) {
	return t.events.CountOnDate(ctx, organizerID, date, excludingEventID)
}

func (t *Tx) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return t.bookings.Insert(ctx, booking)
}

func (t *Tx) GetBookingForUpdate(ctx context.Context, id int64) (*models.Booking, error) {
	return t.bookings.GetForUpdate(ctx, id)
}

func (t *Tx) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	return t.bookings.Update(ctx, booking)
}

func (t *Tx) CountActiveBookings(ctx context.Context, organizerID, counterpartyID int64, serviceID *int64, eventID int64) (int, error) {
	return t.bookings.CountActive(ctx, organizerID, counterpartyID, serviceID, eventID)
}

func (t *Tx) GetWalletForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	return t.wallets.GetOrCreateForUpdate(ctx, userID)
}

func (t *Tx) GetWalletByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error) {
	return t.wallets.GetByIDForUpdate(ctx, walletID)
}

func (t *Tx) UpdateWalletBalances(ctx context.Context, wallet *models.Wallet) error {
	return t.wallets.UpdateBalances(ctx, wallet)
}

func (t *Tx) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return t.transactions.Insert(ctx, tx)
}

func (t *Tx) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return t.transactions.GetByReference(ctx, reference)
}

func (t *Tx) InsertAuditEntry(ctx context.Context, entry *models.AuditLogEntry) error {
	return t.audit.Insert(ctx, entry)
}

var _ store.Store = (*Store)(nil)
var _ store.Tx = (*Tx)(nil)
