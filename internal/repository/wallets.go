package repository

import (
	"context"
	"database/sql"

	"backstage/internal/database"
	"backstage/internal/errors"
	"backstage/internal/models"
)

type WalletRepository struct {
	q database.Querier
}

func NewWalletRepository(q database.Querier) *WalletRepository {
	return &WalletRepository{q: q}
}

const walletColumns = `id, user_id, balance, pending_balance, total_deposited, total_withdrawn, created_at, updated_at`

func scanWallet(row interface{ Scan(...any) error }) (*models.Wallet, error) {
	w := &models.Wallet{}
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.PendingBalance,
		&w.TotalDeposited,
		&w.TotalWithdrawn,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *WalletRepository) GetByID(ctx context.Context, walletID int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	wallet, err := scanWallet(r.q.QueryRowContext(ctx, query, walletID))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "wallet", ID: walletID}
	}
	return wallet, err
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	wallet, err := scanWallet(r.q.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "wallet for user", ID: userID}
	}
	return wallet, err
}

// GetOrCreateForUpdate locks the user's wallet row for the remainder of the
// transaction, creating the wallet on the user's first financial event. The
// upsert closes the race where two commits create the same wallet.
func (r *WalletRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	insert := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.q.ExecContext(ctx, insert, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return scanWallet(r.q.QueryRowContext(ctx, query, userID))
}

func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	wallet, err := scanWallet(r.q.QueryRowContext(ctx, query, walletID))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "wallet", ID: walletID}
	}
	return wallet, err
}

// UpdateBalances persists the cached balance fields. Only the ledger calls
// this, always inside the same transaction as the entries that explain the
// new values.
func (r *WalletRepository) UpdateBalances(ctx context.Context, wallet *models.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, pending_balance = $2, total_deposited = $3, total_withdrawn = $4, updated_at = NOW()
		WHERE id = $5`

	_, err := r.q.ExecContext(ctx, query,
		wallet.Balance,
		wallet.PendingBalance,
		wallet.TotalDeposited,
		wallet.TotalWithdrawn,
		wallet.ID,
	)
	return err
}
