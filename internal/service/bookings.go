package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backstage/internal/config"
	"backstage/internal/errors"
	"backstage/internal/guard"
	"backstage/internal/ledger"
	"backstage/internal/logger"
	"backstage/internal/messaging"
	"backstage/internal/models"
	"backstage/internal/store"
)

// BookingService owns the booking lifecycle. Every transition loads the
// booking under an exclusive lock, validates it against the transition table
// and the actor, then commits state, timestamps, ledger entries, wallet
// deltas and (for admin actors) an audit entry as one atomic unit.
type BookingService struct {
	store  store.Store
	ledger *ledger.Ledger
	guard  *guard.ConflictGuard
	nats   *messaging.NATSClient
	policy config.PolicyConfig
}

func NewBookingService(st store.Store, led *ledger.Ledger, g *guard.ConflictGuard, natsClient *messaging.NATSClient, policy config.PolicyConfig) *BookingService {
	return &BookingService{
		store:  st,
		ledger: led,
		guard:  g,
		nats:   natsClient,
		policy: policy,
	}
}

// Create opens a new booking request in PENDING. The duplicate-tuple guard
// runs in the same transaction as the insert; the partial unique index
// closes the race two concurrent requests would otherwise win together.
func (s *BookingService) Create(ctx context.Context, actor models.Actor, req *models.CreateBookingRequest) (*models.Booking, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return nil, &errors.InvalidArgumentError{Reason: "quantity must be at least 1"}
	}
	if req.OfferedAmount <= 0 {
		return nil, &errors.InvalidArgumentError{Reason: "offered amount must be positive"}
	}
	if req.CounterpartyID == actor.ID {
		return nil, &errors.InvalidArgumentError{Reason: "cannot book yourself"}
	}

	booking := &models.Booking{
		EventID:             req.EventID,
		OrganizerID:         actor.ID,
		CounterpartyID:      req.CounterpartyID,
		ServiceID:           req.ServiceID,
		Status:              models.BookingPending,
		OfferedAmount:       req.OfferedAmount,
		Quantity:            req.Quantity,
		OrganizerNotes:      req.OrganizerNotes,
		SpecialRequirements: req.SpecialRequirements,
	}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		event, err := tx.GetEvent(ctx, req.EventID)
		if err != nil {
			return err
		}
		if event.OrganizerID != actor.ID && !actor.Admin() {
			return &errors.NotAuthorizedError{ActorID: actor.ID, Action: "book for this event"}
		}

		if err := s.guard.CheckNoDuplicateBooking(ctx, tx, booking.OrganizerID, booking.CounterpartyID, booking.ServiceID, booking.EventID); err != nil {
			return err
		}

		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventBookingRequested, booking, "")
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != booking.OrganizerID && actor.ID != booking.CounterpartyID && !actor.Admin() {
		return nil, &errors.NotAuthorizedError{ActorID: actor.ID, Action: "view this booking"}
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	return s.store.ListBookingsByActor(ctx, actor.ID)
}

// Transition applies one lifecycle action to a booking. Concurrent attempts
// on the same booking serialize on the row lock: the loser re-reads a state
// the action is no longer legal from and gets IllegalTransitionError.
func (s *BookingService) Transition(ctx context.Context, actor models.Actor, action models.BookingAction, req *models.TransitionRequest) (*models.Booking, error) {
	var booking *models.Booking
	var subject string
	var replayed bool

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		b, err := tx.GetBookingForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		booking = b

		// A timed-out pay retried with the same reference is a no-op, not
		// an error: the first attempt already moved the money.
		if action == models.ActionPay && b.PaymentReference != nil &&
			req.Reference != "" && *b.PaymentReference == req.Reference {
			replayed = true
			return nil
		}

		to, err := nextState(b, action)
		if err != nil {
			return err
		}
		if err := authorize(actor, b, action); err != nil {
			return err
		}

		now := time.Now()
		switch action {
		case models.ActionAccept:
			subject = models.EventBookingAccepted
			amount := b.OfferedAmount
			if req.Amount != nil {
				if *req.Amount <= 0 {
					return &errors.InvalidArgumentError{Reason: "negotiated amount must be positive"}
				}
				amount = *req.Amount
			}
			// finalAmount is fixed here and immutable afterwards; later
			// price changes never alter an in-flight booking.
			b.FinalAmount = &amount
			b.AcceptedAt = &now
			if req.Notes != nil {
				b.CounterpartyNotes = req.Notes
			}

		case models.ActionDecline:
			subject = models.EventBookingDeclined
			if req.Notes != nil {
				b.CounterpartyNotes = req.Notes
			}

		case models.ActionPay:
			subject = models.EventBookingPaid
			if err := s.applyPayment(ctx, tx, b, req); err != nil {
				return err
			}
			b.PaidAt = &now

		case models.ActionComplete:
			subject = models.EventBookingCompleted
			if err := s.applyRelease(ctx, tx, b); err != nil {
				return err
			}
			b.CompletedAt = &now

		case models.ActionCancel:
			subject = models.EventBookingCancelled
			if req.Reason != "" {
				reason := req.Reason
				b.CancellationReason = &reason
			}
			if b.Status == models.BookingPaid {
				if err := s.applyRefund(ctx, tx, b); err != nil {
					return err
				}
			}
			b.CancelledAt = &now
		}

		from := b.Status
		b.Status = to
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		if actor.Admin() {
			return s.audit(ctx, tx, actor, "booking."+string(action), "booking", b.ID, map[string]any{
				"from": string(from),
				"to":   string(to),
			})
		}
		return nil
	})

	transitionsTotal.WithLabelValues(string(action), outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	if !replayed && subject != "" {
		reason := ""
		if booking.CancellationReason != nil {
			reason = *booking.CancellationReason
		}
		s.publish(ctx, subject, booking, reason)
	}
	return booking, nil
}

// HandlePaymentNotification maps a payment gateway confirmation onto the pay
// transition. A declined capture leaves the booking in ACCEPTED.
func (s *BookingService) HandlePaymentNotification(ctx context.Context, notification *models.PaymentNotificationPayload) error {
	log := logger.WithContext(ctx)
	log.Info("Received payment notification",
		"reference", notification.Reference,
		"booking_id", notification.BookingID,
		"status", notification.Status)

	switch notification.Status {
	case "completed", "CONFIRMED":
		booking, err := s.store.GetBooking(ctx, notification.BookingID)
		if err != nil {
			return err
		}
		_, err = s.Transition(ctx, models.Actor{ID: booking.OrganizerID}, models.ActionPay, &models.TransitionRequest{
			BookingID: booking.ID,
			Reference: notification.Reference,
			External:  true,
		})
		return err

	case "failed", "REJECTED", "CANCELLED":
		log.Warn("Payment capture failed, booking stays accepted",
			"reference", notification.Reference,
			"booking_id", notification.BookingID)
		return nil
	}

	return &errors.InvalidArgumentError{Reason: fmt.Sprintf("unknown payment status %q", notification.Status)}
}

// applyPayment moves the agreed amount into escrow: the organizer's wallet is
// debited (unless the gateway captured the money externally) and the
// counterparty's pending balance is credited, with one held ledger entry.
func (s *BookingService) applyPayment(ctx context.Context, tx store.Tx, b *models.Booking, req *models.TransitionRequest) error {
	if req.Reference == "" {
		return &errors.InvalidArgumentError{Reason: "payment reference is required"}
	}
	if b.FinalAmount == nil {
		return &errors.InvalidArgumentError{Reason: "booking has no agreed amount"}
	}
	amount := *b.FinalAmount

	entry := &models.Transaction{
		Reference:        req.Reference,
		Type:             paymentType(b),
		Status:           models.TxHeld,
		Amount:           amount,
		NetAmount:        amount,
		PayerID:          &b.OrganizerID,
		RecipientID:      &b.CounterpartyID,
		RelatedBookingID: &b.ID,
	}

	deltas := []ledger.Delta{
		{UserID: b.CounterpartyID, Pending: amount},
	}
	if !req.External {
		deltas = append(deltas, ledger.Delta{UserID: b.OrganizerID, Balance: -amount})
	}

	err := s.ledger.Commit(ctx, tx, []*models.Transaction{entry}, deltas)
	ledgerCommitsTotal.WithLabelValues("payment", outcomeLabel(err)).Inc()
	if err != nil {
		return err
	}

	ref := req.Reference
	b.PaymentReference = &ref
	return nil
}

// applyRelease settles a completed booking: the held amount leaves the
// counterparty's pending balance, the net of platform fee lands in their
// spendable balance, and the fee is credited to the platform wallet in the
// same commit.
func (s *BookingService) applyRelease(ctx context.Context, tx store.Tx, b *models.Booking) error {
	amount := *b.FinalAmount
	fee := amount * s.policy.PlatformFeeBps / 10000
	net := amount - fee

	entries := []*models.Transaction{{
		Reference:        fmt.Sprintf("release-%d", b.ID),
		Type:             models.TxPayout,
		Status:           models.TxCompleted,
		Amount:           amount,
		PlatformFee:      fee,
		NetAmount:        net,
		PayerID:          &b.OrganizerID,
		RecipientID:      &b.CounterpartyID,
		RelatedBookingID: &b.ID,
	}}
	deltas := []ledger.Delta{
		{UserID: b.CounterpartyID, Balance: net, Pending: -amount},
	}

	if fee > 0 {
		entries = append(entries, &models.Transaction{
			Reference:        fmt.Sprintf("fee-%d", b.ID),
			Type:             models.TxPlatformFee,
			Status:           models.TxCompleted,
			Amount:           fee,
			NetAmount:        fee,
			PayerID:          &b.CounterpartyID,
			RecipientID:      &s.policy.PlatformUserID,
			RelatedBookingID: &b.ID,
		})
		deltas = append(deltas, ledger.Delta{UserID: s.policy.PlatformUserID, Balance: fee})
	}

	err := s.ledger.Commit(ctx, tx, entries, deltas)
	ledgerCommitsTotal.WithLabelValues("release", outcomeLabel(err)).Inc()
	return err
}

// applyRefund reverses the escrow hold for a paid booking being cancelled.
// The refund share (policy) goes back to the organizer; any remainder is
// released to the counterparty.
func (s *BookingService) applyRefund(ctx context.Context, tx store.Tx, b *models.Booking) error {
	amount := *b.FinalAmount
	refund := amount * s.policy.RefundBps / 10000
	kept := amount - refund

	var entries []*models.Transaction
	deltas := []ledger.Delta{
		{UserID: b.CounterpartyID, Pending: -amount},
	}

	if refund > 0 {
		entries = append(entries, &models.Transaction{
			Reference:        fmt.Sprintf("refund-%d", b.ID),
			Type:             models.TxRefund,
			Status:           models.TxCompleted,
			Amount:           refund,
			NetAmount:        refund,
			PayerID:          &b.CounterpartyID,
			RecipientID:      &b.OrganizerID,
			RelatedBookingID: &b.ID,
		})
		deltas = append(deltas, ledger.Delta{UserID: b.OrganizerID, Balance: refund})
	}
	if kept > 0 {
		entries = append(entries, &models.Transaction{
			Reference:        fmt.Sprintf("cancel-release-%d", b.ID),
			Type:             models.TxPayout,
			Status:           models.TxCompleted,
			Amount:           kept,
			NetAmount:        kept,
			PayerID:          &b.OrganizerID,
			RecipientID:      &b.CounterpartyID,
			RelatedBookingID: &b.ID,
		})
		deltas[0].Balance = kept
	}

	err := s.ledger.Commit(ctx, tx, entries, deltas)
	ledgerCommitsTotal.WithLabelValues("refund", outcomeLabel(err)).Inc()
	return err
}

func paymentType(b *models.Booking) models.TransactionType {
	if b.ServiceID != nil {
		return models.TxVendorService
	}
	return models.TxBookingPayment
}

func (s *BookingService) audit(ctx context.Context, tx store.Tx, actor models.Actor, action, entityType string, entityID int64, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return tx.InsertAuditEntry(ctx, &models.AuditLogEntry{
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(raw),
	})
}

func (s *BookingService) publish(ctx context.Context, subject string, b *models.Booking, reason string) {
	event := models.BookingLifecycleEvent{
		BookingID:      b.ID,
		EventID:        b.EventID,
		OrganizerID:    b.OrganizerID,
		CounterpartyID: b.CounterpartyID,
		Status:         b.Status,
		FinalAmount:    b.FinalAmount,
		Reason:         reason,
		Timestamp:      time.Now(),
	}

	if err := s.nats.Publish(subject, event); err != nil {
		// Notification dispatch never rolls back a committed transition.
		logger.WithContext(ctx).Error("Failed to publish booking event",
			"error", err,
			"booking_id", b.ID,
			"event_type", subject)
	}
}
