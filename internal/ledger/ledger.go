// Package ledger is the only writer of wallet balances. Every balance change
// is committed together with the immutable transaction entries that explain
// it, inside one store transaction, or not at all.
package ledger

import (
	"context"
	"sort"

	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"
)

// Delta is one wallet's signed balance change within a commit. Balance moves
// the spendable balance, Pending the held/escrow balance. Positive Balance
// counts toward the wallet's total deposited, negative toward total
// withdrawn.
type Delta struct {
	UserID  int64
	Balance int64
	Pending int64
}

// Ledger applies entries and wallet deltas as one atomic unit. It carries no
// state of its own; atomicity comes from the store transaction it runs in.
type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// Commit appends all entries and applies all wallet deltas inside tx.
//
// Fails with DuplicateReferenceError when an entry's reference collides with
// an existing transaction (the idempotency guard: a retried payment must not
// double-apply) and with InsufficientBalanceError when any delta would drive
// a spendable balance below zero. On failure the caller's transaction rolls
// back, so partial application is structurally impossible.
func (l *Ledger) Commit(ctx context.Context, tx store.Tx, entries []*models.Transaction, deltas []Delta) error {
	for _, entry := range entries {
		if entry.Amount <= 0 {
			return &errors.InvalidArgumentError{Reason: "ledger entry amount must be positive"}
		}
		if err := tx.InsertTransaction(ctx, entry); err != nil {
			return err
		}
	}

	// Lock wallets in a stable order so two commits touching the same pair
	// of wallets cannot deadlock.
	ordered := make([]Delta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UserID < ordered[j].UserID })

	for _, d := range ordered {
		wallet, err := tx.GetWalletForUpdate(ctx, d.UserID)
		if err != nil {
			return err
		}

		newBalance := wallet.Balance + d.Balance
		if newBalance < 0 {
			return &errors.InsufficientBalanceError{
				WalletID:  wallet.ID,
				Balance:   wallet.Balance,
				Requested: -d.Balance,
			}
		}

		wallet.Balance = newBalance
		wallet.PendingBalance += d.Pending
		if d.Balance > 0 {
			wallet.TotalDeposited += d.Balance
		} else if d.Balance < 0 {
			wallet.TotalWithdrawn += -d.Balance
		}

		if err := tx.UpdateWalletBalances(ctx, wallet); err != nil {
			return err
		}
	}

	return nil
}
