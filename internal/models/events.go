package models

import "time"

// NATS notification subjects. Published after a successful commit; delivery
// is fire-and-forget and never rolls back the committed transition.
const (
	EventBookingRequested = "booking.requested"
	EventBookingAccepted  = "booking.accepted"
	EventBookingDeclined  = "booking.declined"
	EventBookingPaid      = "booking.paid"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
	EventWalletAdjusted   = "wallet.adjusted"
)

// BookingLifecycleEvent is published on every booking transition.
type BookingLifecycleEvent struct {
	BookingID      int64        `json:"booking_id"`
	EventID        int64        `json:"event_id"`
	OrganizerID    int64        `json:"organizer_id"`
	CounterpartyID int64        `json:"counterparty_id"`
	Status         BookingState `json:"status"`
	FinalAmount    *int64       `json:"final_amount,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// WalletAdjustedEvent is published after an admin adjustment commits.
type WalletAdjustedEvent struct {
	WalletID  int64     `json:"wallet_id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}
