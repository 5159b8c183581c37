package service

import (
	"context"

	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"
)

// WalletService serves the read side of wallets and the ledger. Reads come
// from the latest committed snapshot and never block writers.
type WalletService struct {
	store store.Store
}

func NewWalletService(st store.Store) *WalletService {
	return &WalletService{store: st}
}

func (s *WalletService) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	return s.store.GetWalletByUserID(ctx, userID)
}

// ListTransactions returns the wallet's ledger history. Only the wallet's
// owner or an admin may read it.
func (s *WalletService) ListTransactions(ctx context.Context, actor models.Actor, walletID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	wallet, err := s.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != actor.ID && !actor.Admin() {
		return nil, &errors.NotAuthorizedError{ActorID: actor.ID, Action: "read wallet transactions"}
	}
	return s.store.ListTransactions(ctx, walletID, filter)
}
