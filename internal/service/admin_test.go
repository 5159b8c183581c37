package service

import (
	"context"
	"testing"

	"backstage/internal/errors"
	"backstage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_Credit(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()

	walletID := fund(t, st, 42, 0)

	entry, err := svc.Admin.Adjust(ctx, admin, &models.AdjustWalletRequest{
		WalletID: walletID,
		Type:     AdjustCredit,
		Amount:   2500,
		Reason:   "goodwill for double booking",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TxAdjustmentCredit, entry.Type)
	assert.Equal(t, models.TxCompleted, entry.Status)
	assert.NotEmpty(t, entry.Reference)

	w := wallet(t, st, 42)
	assert.Equal(t, int64(2500), w.Balance)
	assert.Equal(t, int64(2500), w.TotalDeposited)

	// The adjustment is audited with its reason.
	entries, err := svc.Admin.ListAuditEntries(ctx, admin, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wallet.adjust", entries[0].Action)
	assert.Equal(t, walletID, entries[0].EntityID)
	assert.Contains(t, entries[0].Details, "goodwill for double booking")
}

func TestAdjust_Debit(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()

	walletID := fund(t, st, 42, 5000)

	entry, err := svc.Admin.Adjust(ctx, admin, &models.AdjustWalletRequest{
		WalletID: walletID,
		Type:     AdjustDebit,
		Amount:   3000,
		Reason:   "chargeback",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TxAdjustmentDebit, entry.Type)

	w := wallet(t, st, 42)
	assert.Equal(t, int64(2000), w.Balance)
	assert.Equal(t, int64(3000), w.TotalWithdrawn)
}

func TestAdjust_DebitBeyondBalanceLeavesNothingBehind(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()

	walletID := fund(t, st, 42, 1000)

	_, err := svc.Admin.Adjust(ctx, admin, &models.AdjustWalletRequest{
		WalletID: walletID,
		Type:     AdjustDebit,
		Amount:   5000,
		Reason:   "chargeback",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientBalance, errors.CodeOf(err))

	// Whole unit rolled back: balance intact, no ledger entry, no audit.
	assert.Equal(t, int64(1000), wallet(t, st, 42).Balance)

	entries, err := svc.Admin.ListAuditEntries(ctx, admin, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	txs, err := st.ListTransactions(ctx, walletID, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1) // only the seed credit
	assert.Equal(t, models.TxAdjustmentCredit, txs[0].Type)
}

func TestAdjust_RequiresAdmin(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()

	walletID := fund(t, st, 42, 1000)

	_, err := svc.Admin.Adjust(ctx, models.Actor{ID: 42}, &models.AdjustWalletRequest{
		WalletID: walletID,
		Type:     AdjustCredit,
		Amount:   100,
		Reason:   "self service",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotAuthorized, errors.CodeOf(err))
}

func TestAdjust_Validation(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()
	walletID := fund(t, st, 42, 0)

	cases := []struct {
		name string
		req  models.AdjustWalletRequest
	}{
		{"zero amount", models.AdjustWalletRequest{WalletID: walletID, Type: AdjustCredit, Reason: "x"}},
		{"missing reason", models.AdjustWalletRequest{WalletID: walletID, Type: AdjustCredit, Amount: 100}},
		{"unknown type", models.AdjustWalletRequest{WalletID: walletID, Type: "transfer", Amount: 100, Reason: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.Admin.Adjust(ctx, admin, &req)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidArgument, errors.CodeOf(err))
		})
	}
}

func TestListAuditEntries_RequiresAdmin(t *testing.T) {
	svc, _ := newTestEnv(t)

	_, err := svc.Admin.ListAuditEntries(context.Background(), models.Actor{ID: 42}, 10)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotAuthorized, errors.CodeOf(err))
}

func TestWallet_ListTransactionsAuthorization(t *testing.T) {
	svc, st := newTestEnv(t)
	ctx := context.Background()

	walletID := fund(t, st, 42, 1000)

	// Owner reads fine.
	_, err := svc.Wallets.ListTransactions(ctx, models.Actor{ID: 42}, walletID, models.TransactionFilter{})
	assert.NoError(t, err)

	// Admin reads fine.
	_, err = svc.Wallets.ListTransactions(ctx, admin, walletID, models.TransactionFilter{})
	assert.NoError(t, err)

	// Anyone else is rejected.
	_, err = svc.Wallets.ListTransactions(ctx, models.Actor{ID: 77}, walletID, models.TransactionFilter{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotAuthorized, errors.CodeOf(err))
}
