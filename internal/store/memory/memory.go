// Package memory provides an in-memory Store for tests and local runs. It
// enforces the same invariants as the Postgres layer: atomic units roll back
// wholly on error, tuple/date/reference uniqueness fail with the same typed
// errors, and units touching shared state serialize on one mutex.
package memory

import (
	"context"
	"sync"
	"time"

	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"
)

type Memory struct {
	mu sync.Mutex
	st state
}

type state struct {
	events       map[int64]models.Event
	bookings     map[int64]models.Booking
	wallets      map[int64]models.Wallet // keyed by wallet ID
	walletByUser map[int64]int64
	transactions []models.Transaction
	txByRef      map[string]int // index into transactions
	audit        []models.AuditLogEntry

	nextEventID   int64
	nextBookingID int64
	nextWalletID  int64
	nextTxID      int64
	nextAuditID   int64
}

func New() *Memory {
	return &Memory{st: state{
		events:       make(map[int64]models.Event),
		bookings:     make(map[int64]models.Booking),
		wallets:      make(map[int64]models.Wallet),
		walletByUser: make(map[int64]int64),
		txByRef:      make(map[string]int),
	}}
}

func (s state) clone() state {
	out := state{
		events:        make(map[int64]models.Event, len(s.events)),
		bookings:      make(map[int64]models.Booking, len(s.bookings)),
		wallets:       make(map[int64]models.Wallet, len(s.wallets)),
		walletByUser:  make(map[int64]int64, len(s.walletByUser)),
		transactions:  append([]models.Transaction(nil), s.transactions...),
		txByRef:       make(map[string]int, len(s.txByRef)),
		audit:         append([]models.AuditLogEntry(nil), s.audit...),
		nextEventID:   s.nextEventID,
		nextBookingID: s.nextBookingID,
		nextWalletID:  s.nextWalletID,
		nextTxID:      s.nextTxID,
		nextAuditID:   s.nextAuditID,
	}
	for k, v := range s.events {
		out.events[k] = v
	}
	for k, v := range s.bookings {
		out.bookings[k] = v
	}
	for k, v := range s.wallets {
		out.wallets[k] = v
	}
	for k, v := range s.walletByUser {
		out.walletByUser[k] = v
	}
	for k, v := range s.txByRef {
		out.txByRef[k] = v
	}
	return out
}

// InTx runs fn against the live state under the store mutex. On error the
// pre-unit snapshot is restored, so partial application cannot survive.
func (m *Memory) InTx(_ context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(&tx{st: &m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.bookings[id]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "booking", ID: id}
	}
	return &b, nil
}

func (m *Memory) ListBookingsByActor(_ context.Context, actorID int64) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.st.bookings {
		if b.OrganizerID == actorID || b.CounterpartyID == actorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) ListPaidBookingsDue(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.st.bookings {
		if b.Status != models.BookingPaid {
			continue
		}
		event, ok := m.st.events[b.EventID]
		if ok && !event.StartsAt.After(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.st.events[id]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "event", ID: id}
	}
	return &e, nil
}

func (m *Memory) ListEventsByOrganizer(_ context.Context, organizerID int64) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.st.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) GetWallet(_ context.Context, walletID int64) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.st.wallets[walletID]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "wallet", ID: walletID}
	}
	return &w, nil
}

func (m *Memory) GetWalletByUserID(_ context.Context, userID int64) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.st.walletByUser[userID]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "wallet for user", ID: userID}
	}
	w := m.st.wallets[id]
	return &w, nil
}

func (m *Memory) ListTransactions(_ context.Context, walletID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.st.wallets[walletID]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "wallet", ID: walletID}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var out []models.Transaction
	for i := len(m.st.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.st.transactions[i]
		involved := (t.PayerID != nil && *t.PayerID == w.UserID) ||
			(t.RecipientID != nil && *t.RecipientID == w.UserID)
		if !involved {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *Memory) ListAuditEntries(_ context.Context, limit int) ([]models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.AuditLogEntry
	for i := len(m.st.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.st.audit[i])
	}
	return out, nil
}

// tx is the write surface of one in-flight unit. It mutates the live state
// directly; InTx restores the snapshot when the unit fails.
type tx struct {
	st *state
}

func (t *tx) InsertEvent(_ context.Context, event *models.Event) error {
	day := event.StartsAt.Format("2006-01-02")
	for _, e := range t.st.events {
		if e.OrganizerID == event.OrganizerID && e.StartsAt.Format("2006-01-02") == day {
			return &errors.ScheduleConflictError{OrganizerID: event.OrganizerID, Date: day}
		}
	}

	t.st.nextEventID++
	event.ID = t.st.nextEventID
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	t.st.events[event.ID] = *event
	return nil
}

func (t *tx) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	e, ok := t.st.events[id]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "event", ID: id}
	}
	return &e, nil
}

func (t *tx) CountEventsOnDate(_ context.Context, organizerID int64, date time.Time, excludingEventID int64) (int, error) {
	day := date.Format("2006-01-02")
	count := 0
	for _, e := range t.st.events {
		if e.OrganizerID == organizerID && e.ID != excludingEventID && e.StartsAt.Format("2006-01-02") == day {
			count++
		}
	}
	return count, nil
}

func (t *tx) InsertBooking(_ context.Context, booking *models.Booking) error {
	count, _ := t.CountActiveBookings(context.Background(), booking.OrganizerID, booking.CounterpartyID, booking.ServiceID, booking.EventID)
	if count > 0 {
		return &errors.DuplicateBookingError{
			OrganizerID:    booking.OrganizerID,
			CounterpartyID: booking.CounterpartyID,
			EventID:        booking.EventID,
			ServiceID:      booking.ServiceID,
		}
	}

	t.st.nextBookingID++
	booking.ID = t.st.nextBookingID
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	t.st.bookings[booking.ID] = *booking
	return nil
}

func (t *tx) GetBookingForUpdate(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := t.st.bookings[id]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "booking", ID: id}
	}
	return &b, nil
}

func (t *tx) UpdateBooking(_ context.Context, booking *models.Booking) error {
	if _, ok := t.st.bookings[booking.ID]; !ok {
		return &errors.NotFoundError{Entity: "booking", ID: booking.ID}
	}
	booking.UpdatedAt = time.Now()
	t.st.bookings[booking.ID] = *booking
	return nil
}

func (t *tx) CountActiveBookings(_ context.Context, organizerID, counterpartyID int64, serviceID *int64, eventID int64) (int, error) {
	count := 0
	for _, b := range t.st.bookings {
		if b.OrganizerID != organizerID || b.CounterpartyID != counterpartyID || b.EventID != eventID {
			continue
		}
		if !sameService(b.ServiceID, serviceID) {
			continue
		}
		if b.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (t *tx) GetWalletForUpdate(_ context.Context, userID int64) (*models.Wallet, error) {
	if id, ok := t.st.walletByUser[userID]; ok {
		w := t.st.wallets[id]
		return &w, nil
	}

	t.st.nextWalletID++
	now := time.Now()
	w := models.Wallet{ID: t.st.nextWalletID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	t.st.wallets[w.ID] = w
	t.st.walletByUser[userID] = w.ID
	return &w, nil
}

func (t *tx) GetWalletByIDForUpdate(_ context.Context, walletID int64) (*models.Wallet, error) {
	w, ok := t.st.wallets[walletID]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "wallet", ID: walletID}
	}
	return &w, nil
}

func (t *tx) UpdateWalletBalances(_ context.Context, wallet *models.Wallet) error {
	if _, ok := t.st.wallets[wallet.ID]; !ok {
		return &errors.NotFoundError{Entity: "wallet", ID: wallet.ID}
	}
	wallet.UpdatedAt = time.Now()
	t.st.wallets[wallet.ID] = *wallet
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, entry *models.Transaction) error {
	if _, ok := t.st.txByRef[entry.Reference]; ok {
		return &errors.DuplicateReferenceError{Reference: entry.Reference}
	}

	t.st.nextTxID++
	entry.ID = t.st.nextTxID
	entry.CreatedAt = time.Now()
	t.st.transactions = append(t.st.transactions, *entry)
	t.st.txByRef[entry.Reference] = len(t.st.transactions) - 1
	return nil
}

func (t *tx) GetTransactionByReference(_ context.Context, reference string) (*models.Transaction, error) {
	i, ok := t.st.txByRef[reference]
	if !ok {
		return nil, &errors.NotFoundError{Entity: "transaction", ID: 0}
	}
	entry := t.st.transactions[i]
	return &entry, nil
}

func (t *tx) InsertAuditEntry(_ context.Context, entry *models.AuditLogEntry) error {
	t.st.nextAuditID++
	entry.ID = t.st.nextAuditID
	entry.CreatedAt = time.Now()
	t.st.audit = append(t.st.audit, *entry)
	return nil
}

func sameService(a, b *int64) bool {
	av, bv := int64(0), int64(0)
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

var _ store.Store = (*Memory)(nil)
var _ store.Tx = (*tx)(nil)
