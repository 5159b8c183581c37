package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"backstage/internal/errors"
	"backstage/internal/ledger"
	"backstage/internal/logger"
	"backstage/internal/messaging"
	"backstage/internal/models"
	"backstage/internal/store"
)

const (
	AdjustCredit = "credit"
	AdjustDebit  = "debit"
)

// AdminService is the privileged direct wallet mutation path. An adjustment
// is one completed ledger entry plus one audit entry plus the balance change,
// all in one commit; there is no bare balance write anywhere.
type AdminService struct {
	store  store.Store
	ledger *ledger.Ledger
	nats   *messaging.NATSClient
}

func NewAdminService(st store.Store, led *ledger.Ledger, natsClient *messaging.NATSClient) *AdminService {
	return &AdminService{store: st, ledger: led, nats: natsClient}
}

// Adjust credits or debits a wallet directly. Debits beyond the current
// spendable balance fail with InsufficientBalanceError and leave nothing
// behind: no transaction, no audit entry, no balance change.
func (s *AdminService) Adjust(ctx context.Context, actor models.Actor, req *models.AdjustWalletRequest) (*models.Transaction, error) {
	if !actor.Admin() {
		return nil, &errors.NotAuthorizedError{ActorID: actor.ID, Action: "adjust wallet"}
	}
	if req.Amount <= 0 {
		return nil, &errors.InvalidArgumentError{Reason: "adjustment amount must be positive"}
	}
	if req.Reason == "" {
		return nil, &errors.InvalidArgumentError{Reason: "adjustment reason is required"}
	}
	if req.Type != AdjustCredit && req.Type != AdjustDebit {
		return nil, &errors.InvalidArgumentError{Reason: fmt.Sprintf("unknown adjustment type %q", req.Type)}
	}

	entry := &models.Transaction{
		Reference: fmt.Sprintf("adj-%s", uuid.New().String()),
		Status:    models.TxCompleted,
		Amount:    req.Amount,
		NetAmount: req.Amount,
	}

	var userID int64
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		wallet, err := tx.GetWalletByIDForUpdate(ctx, req.WalletID)
		if err != nil {
			return err
		}
		userID = wallet.UserID

		delta := ledger.Delta{UserID: wallet.UserID}
		if req.Type == AdjustCredit {
			entry.Type = models.TxAdjustmentCredit
			entry.RecipientID = &userID
			delta.Balance = req.Amount
		} else {
			entry.Type = models.TxAdjustmentDebit
			entry.PayerID = &userID
			delta.Balance = -req.Amount
		}

		if err := s.ledger.Commit(ctx, tx, []*models.Transaction{entry}, []ledger.Delta{delta}); err != nil {
			return err
		}

		raw := fmt.Sprintf(`{"type":%q,"amount":%d,"reason":%q,"reference":%q}`,
			req.Type, req.Amount, req.Reason, entry.Reference)
		return tx.InsertAuditEntry(ctx, &models.AuditLogEntry{
			ActorID:    actor.ID,
			Action:     "wallet.adjust",
			EntityType: "wallet",
			EntityID:   req.WalletID,
			Details:    raw,
		})
	})

	ledgerCommitsTotal.WithLabelValues("adjustment", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	notification := models.WalletAdjustedEvent{
		WalletID:  req.WalletID,
		UserID:    userID,
		Type:      req.Type,
		Amount:    req.Amount,
		Reference: entry.Reference,
		Timestamp: time.Now(),
	}
	if err := s.nats.Publish(models.EventWalletAdjusted, notification); err != nil {
		logger.WithContext(ctx).Error("Failed to publish wallet adjusted event",
			"error", err,
			"wallet_id", req.WalletID)
	}

	return entry, nil
}

func (s *AdminService) ListAuditEntries(ctx context.Context, actor models.Actor, limit int) ([]models.AuditLogEntry, error) {
	if !actor.Admin() {
		return nil, &errors.NotAuthorizedError{ActorID: actor.ID, Action: "read audit log"}
	}
	return s.store.ListAuditEntries(ctx, limit)
}
