package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createBookingsTable,
		createWalletsTable,
		createTransactionsTable,
		createAuditLogTable,
		createEventsOrganizerDateIndex,
		createBookingsActiveTupleIndex,
		createBookingsLookupIndexes,
		createTransactionsLookupIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    organizer_id BIGINT NOT NULL,
    title VARCHAR(500) NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id),
    organizer_id BIGINT NOT NULL,
    counterparty_id BIGINT NOT NULL,
    service_id BIGINT,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    offered_amount BIGINT NOT NULL,
    final_amount BIGINT,
    quantity INTEGER NOT NULL DEFAULT 1,
    organizer_notes TEXT,
    counterparty_notes TEXT,
    special_requirements TEXT,
    cancellation_reason TEXT,
    payment_reference VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    accepted_at TIMESTAMP,
    paid_at TIMESTAMP,
    completed_at TIMESTAMP,
    cancelled_at TIMESTAMP,

    CHECK (status IN ('PENDING', 'ACCEPTED', 'PAID', 'COMPLETED', 'DECLINED', 'CANCELLED')),
    CHECK (quantity >= 1),
    CHECK (offered_amount > 0)
);`

const createWalletsTable = `
CREATE TABLE IF NOT EXISTS wallets (
    id SERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    balance BIGINT NOT NULL DEFAULT 0,
    pending_balance BIGINT NOT NULL DEFAULT 0,
    total_deposited BIGINT NOT NULL DEFAULT 0,
    total_withdrawn BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (balance >= 0)
);`

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
    id SERIAL PRIMARY KEY,
    reference VARCHAR(255) NOT NULL,
    type VARCHAR(30) NOT NULL,
    status VARCHAR(20) NOT NULL,
    amount BIGINT NOT NULL,
    platform_fee BIGINT NOT NULL DEFAULT 0,
    net_amount BIGINT NOT NULL,
    payer_id BIGINT,
    recipient_id BIGINT,
    related_booking_id INTEGER REFERENCES bookings(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CONSTRAINT transactions_reference_key UNIQUE (reference),
    CHECK (type IN ('ticket_sale', 'booking_payment', 'vendor_service', 'payout',
                    'refund', 'adjustment_credit', 'adjustment_debit', 'platform_fee')),
    CHECK (status IN ('pending', 'authorized', 'held', 'released', 'completed', 'failed', 'refunded')),
    CHECK (amount > 0)
);`

const createAuditLogTable = `
CREATE TABLE IF NOT EXISTS audit_log (
    id SERIAL PRIMARY KEY,
    actor_id BIGINT NOT NULL,
    action VARCHAR(100) NOT NULL,
    entity_type VARCHAR(50) NOT NULL,
    entity_id BIGINT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// One event per organizer per calendar date. The index is the real guard;
// the pre-check in the service only exists for a friendlier error.
const createEventsOrganizerDateIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS events_organizer_date_key
ON events (organizer_id, (DATE(starts_at)));`

// One active booking per (organizer, counterparty, service, event) tuple.
// Declined and cancelled bookings free the slot.
const createBookingsActiveTupleIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_tuple_key
ON bookings (organizer_id, counterparty_id, COALESCE(service_id, 0), event_id)
WHERE status NOT IN ('DECLINED', 'CANCELLED');`

const createBookingsLookupIndexes = `
CREATE INDEX IF NOT EXISTS bookings_organizer_idx ON bookings (organizer_id);
CREATE INDEX IF NOT EXISTS bookings_counterparty_idx ON bookings (counterparty_id);
CREATE INDEX IF NOT EXISTS bookings_event_idx ON bookings (event_id);
CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status);`

const createTransactionsLookupIndexes = `
CREATE INDEX IF NOT EXISTS transactions_payer_idx ON transactions (payer_id);
CREATE INDEX IF NOT EXISTS transactions_recipient_idx ON transactions (recipient_id);
CREATE INDEX IF NOT EXISTS transactions_booking_idx ON transactions (related_booking_id);`
