package models

import "time"

// CreateEventRequest - payload for creating an event
type CreateEventRequest struct {
	Title    string    `json:"title" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
}

// CreateBookingRequest - payload for creating a booking request
type CreateBookingRequest struct {
	EventID             int64   `json:"event_id" binding:"required"`
	CounterpartyID      int64   `json:"counterparty_id" binding:"required"`
	ServiceID           *int64  `json:"service_id"`
	OfferedAmount       int64   `json:"offered_amount" binding:"required"`
	Quantity            int     `json:"quantity"`
	OrganizerNotes      *string `json:"organizer_notes"`
	SpecialRequirements *string `json:"special_requirements"`
}

// TransitionRequest - payload for the booking transition endpoints. Which
// fields matter depends on the action: accept may carry a negotiated amount
// and counterparty notes, pay carries the payment reference and source,
// cancel/decline carry a reason.
type TransitionRequest struct {
	BookingID int64   `json:"-"`
	Amount    *int64  `json:"amount"`
	Notes     *string `json:"notes"`
	Reference string  `json:"reference"`
	External  bool    `json:"external"`
	Reason    string  `json:"reason"`
}

// PaymentNotificationPayload - payment gateway webhook body
type PaymentNotificationPayload struct {
	Reference string `json:"reference" binding:"required"`
	BookingID int64  `json:"booking_id" binding:"required"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status" binding:"required"`
}

// AdjustWalletRequest - admin credit/debit of a wallet
type AdjustWalletRequest struct {
	WalletID int64  `json:"wallet_id" binding:"required"`
	Type     string `json:"type" binding:"required"` // credit | debit
	Amount   int64  `json:"amount" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// TransactionFilter - optional filters for listing ledger entries
type TransactionFilter struct {
	Type   *TransactionType
	Status *TransactionStatus
	Limit  int
}
