package models

import (
	"time"
)

// BookingState is the lifecycle state of a booking. Transitions between
// states are owned by the service layer's transition table; nothing else
// writes Status.
type BookingState string

const (
	BookingPending   BookingState = "PENDING"
	BookingAccepted  BookingState = "ACCEPTED"
	BookingPaid      BookingState = "PAID"
	BookingCompleted BookingState = "COMPLETED"
	BookingDeclined  BookingState = "DECLINED"
	BookingCancelled BookingState = "CANCELLED"
)

// Terminal reports whether no further transitions are possible from s.
func (s BookingState) Terminal() bool {
	switch s {
	case BookingCompleted, BookingDeclined, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still occupies its
// (organizer, counterparty, service, event) slot.
func (s BookingState) Active() bool {
	return s != BookingDeclined && s != BookingCancelled
}

// BookingAction is a caller-requested transition.
type BookingAction string

const (
	ActionAccept   BookingAction = "accept"
	ActionDecline  BookingAction = "decline"
	ActionPay      BookingAction = "pay"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
)

// Booking represents one request for a paid service tied to exactly one event.
// The organizer and counterparty are fixed at creation and never reassigned.
type Booking struct {
	ID             int64        `json:"id" db:"id"`
	EventID        int64        `json:"event_id" db:"event_id"`
	OrganizerID    int64        `json:"organizer_id" db:"organizer_id"`
	CounterpartyID int64        `json:"counterparty_id" db:"counterparty_id"`
	ServiceID      *int64       `json:"service_id" db:"service_id"`
	Status         BookingState `json:"status" db:"status"`

	OfferedAmount int64  `json:"offered_amount" db:"offered_amount"`
	FinalAmount   *int64 `json:"final_amount" db:"final_amount"`
	Quantity      int    `json:"quantity" db:"quantity"`

	OrganizerNotes       *string `json:"organizer_notes" db:"organizer_notes"`
	CounterpartyNotes    *string `json:"counterparty_notes" db:"counterparty_notes"`
	SpecialRequirements  *string `json:"special_requirements" db:"special_requirements"`
	CancellationReason   *string `json:"cancellation_reason" db:"cancellation_reason"`
	PaymentReference     *string `json:"payment_reference" db:"payment_reference"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at" db:"accepted_at"`
	PaidAt      *time.Time `json:"paid_at" db:"paid_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at" db:"cancelled_at"`
}

// Event is the minimal event record the engine needs: bookings reference it
// and the conflict guard enforces one event per organizer per calendar date.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	OrganizerID int64     `json:"organizer_id" db:"organizer_id"`
	Title       string    `json:"title" db:"title"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Wallet is one user's cached balances. Balance always equals the signed sum
// of completed ledger entries for the wallet; PendingBalance the signed sum of
// held entries. Mutated exclusively through ledger commits.
type Wallet struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Balance        int64     `json:"balance" db:"balance"`
	PendingBalance int64     `json:"pending_balance" db:"pending_balance"`
	TotalDeposited int64     `json:"total_deposited" db:"total_deposited"`
	TotalWithdrawn int64     `json:"total_withdrawn" db:"total_withdrawn"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TransactionType enumerates the kinds of money movement the ledger records.
type TransactionType string

const (
	TxTicketSale       TransactionType = "ticket_sale"
	TxBookingPayment   TransactionType = "booking_payment"
	TxVendorService    TransactionType = "vendor_service"
	TxPayout           TransactionType = "payout"
	TxRefund           TransactionType = "refund"
	TxAdjustmentCredit TransactionType = "adjustment_credit"
	TxAdjustmentDebit  TransactionType = "adjustment_debit"
	TxPlatformFee      TransactionType = "platform_fee"
)

// TransactionStatus is the settlement state of a ledger entry. completed,
// failed and refunded are terminal; a terminal entry is never mutated again,
// only reversed by a compensating entry.
type TransactionStatus string

const (
	TxPending    TransactionStatus = "pending"
	TxAuthorized TransactionStatus = "authorized"
	TxHeld       TransactionStatus = "held"
	TxReleased   TransactionStatus = "released"
	TxCompleted  TransactionStatus = "completed"
	TxFailed     TransactionStatus = "failed"
	TxRefunded   TransactionStatus = "refunded"
)

// Terminal reports whether the entry may never be mutated again.
func (s TransactionStatus) Terminal() bool {
	return s == TxCompleted || s == TxFailed || s == TxRefunded
}

// Transaction is one immutable ledger entry. Reference is globally unique and
// is the idempotency key for retried payments.
type Transaction struct {
	ID               int64             `json:"id" db:"id"`
	Reference        string            `json:"reference" db:"reference"`
	Type             TransactionType   `json:"type" db:"type"`
	Status           TransactionStatus `json:"status" db:"status"`
	Amount           int64             `json:"amount" db:"amount"`
	PlatformFee      int64             `json:"platform_fee" db:"platform_fee"`
	NetAmount        int64             `json:"net_amount" db:"net_amount"`
	PayerID          *int64            `json:"payer_id" db:"payer_id"`
	RecipientID      *int64            `json:"recipient_id" db:"recipient_id"`
	RelatedBookingID *int64            `json:"related_booking_id" db:"related_booking_id"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// AuditLogEntry is one append-only record of a privileged action.
type AuditLogEntry struct {
	ID         int64     `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Details    string    `json:"details" db:"details"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Actor roles as supplied by the upstream identity gateway.
const (
	RoleAdmin  = "admin"
	RoleSystem = "system"
)

// Actor identifies who is asking for a transition or adjustment.
// Identity/authentication itself lives outside the engine.
type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// Admin reports whether the actor may use privileged paths.
func (a Actor) Admin() bool { return a.Role == RoleAdmin }

// System reports whether the actor is the engine's own background worker.
func (a Actor) System() bool { return a.Role == RoleSystem }
