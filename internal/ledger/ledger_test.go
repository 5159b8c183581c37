package ledger

import (
	"context"
	"testing"

	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"
	"backstage/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commit(t *testing.T, st *memory.Memory, entries []*models.Transaction, deltas []Delta) error {
	t.Helper()
	led := New()
	return st.InTx(context.Background(), func(tx store.Tx) error {
		return led.Commit(context.Background(), tx, entries, deltas)
	})
}

func balanceOf(t *testing.T, st *memory.Memory, userID int64) *models.Wallet {
	t.Helper()
	w, err := st.GetWalletByUserID(context.Background(), userID)
	require.NoError(t, err)
	return w
}

func credit(userID, amount int64, ref string) (*models.Transaction, Delta) {
	return &models.Transaction{
		Reference:   ref,
		Type:        models.TxAdjustmentCredit,
		Status:      models.TxCompleted,
		Amount:      amount,
		NetAmount:   amount,
		RecipientID: &userID,
	}, Delta{UserID: userID, Balance: amount}
}

func TestCommit_AppliesEntriesAndDeltas(t *testing.T) {
	st := memory.New()

	entry, delta := credit(7, 5000, "c-1")
	require.NoError(t, commit(t, st, []*models.Transaction{entry}, []Delta{delta}))

	w := balanceOf(t, st, 7)
	assert.Equal(t, int64(5000), w.Balance)
	assert.Equal(t, int64(5000), w.TotalDeposited)
	assert.Equal(t, int64(0), w.TotalWithdrawn)
	assert.NotZero(t, entry.ID)
}

func TestCommit_TransferBetweenWallets(t *testing.T) {
	st := memory.New()

	entry, delta := credit(7, 5000, "c-1")
	require.NoError(t, commit(t, st, []*models.Transaction{entry}, []Delta{delta}))

	payer, recipient := int64(7), int64(8)
	transfer := &models.Transaction{
		Reference:   "t-1",
		Type:        models.TxBookingPayment,
		Status:      models.TxHeld,
		Amount:      3000,
		NetAmount:   3000,
		PayerID:     &payer,
		RecipientID: &recipient,
	}
	err := commit(t, st, []*models.Transaction{transfer}, []Delta{
		{UserID: payer, Balance: -3000},
		{UserID: recipient, Pending: 3000},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), balanceOf(t, st, payer).Balance)
	assert.Equal(t, int64(3000), balanceOf(t, st, payer).TotalWithdrawn)
	assert.Equal(t, int64(3000), balanceOf(t, st, recipient).PendingBalance)
	assert.Equal(t, int64(0), balanceOf(t, st, recipient).Balance)
}

func TestCommit_RejectsOverdraft(t *testing.T) {
	st := memory.New()

	entry, delta := credit(7, 1000, "c-1")
	require.NoError(t, commit(t, st, []*models.Transaction{entry}, []Delta{delta}))

	debit := &models.Transaction{
		Reference: "d-1",
		Type:      models.TxAdjustmentDebit,
		Status:    models.TxCompleted,
		Amount:    2000,
		NetAmount: 2000,
	}
	err := commit(t, st, []*models.Transaction{debit}, []Delta{{UserID: 7, Balance: -2000}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientBalance, errors.CodeOf(err))

	// Rolled back: the entry did not land either.
	w := balanceOf(t, st, 7)
	assert.Equal(t, int64(1000), w.Balance)
	txs, err := st.ListTransactions(context.Background(), w.ID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCommit_RejectsDuplicateReference(t *testing.T) {
	st := memory.New()

	entry, delta := credit(7, 1000, "same-ref")
	require.NoError(t, commit(t, st, []*models.Transaction{entry}, []Delta{delta}))

	again, delta2 := credit(7, 1000, "same-ref")
	err := commit(t, st, []*models.Transaction{again}, []Delta{delta2})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateReference, errors.CodeOf(err))

	// The retry applied nothing.
	assert.Equal(t, int64(1000), balanceOf(t, st, 7).Balance)
}

func TestCommit_RejectsNonPositiveAmount(t *testing.T) {
	st := memory.New()

	for _, amount := range []int64{0, -100} {
		entry := &models.Transaction{
			Reference: "bad",
			Type:      models.TxAdjustmentCredit,
			Status:    models.TxCompleted,
			Amount:    amount,
		}
		err := commit(t, st, []*models.Transaction{entry}, nil)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidArgument, errors.CodeOf(err))
	}
}

func TestCommit_PendingMayGoNegativeOnlyViaRelease(t *testing.T) {
	st := memory.New()

	// A hold then its release: pending rises and falls back to zero while
	// the spendable balance only ever moves at release time.
	hold := &models.Transaction{
		Reference: "hold-1",
		Type:      models.TxVendorService,
		Status:    models.TxHeld,
		Amount:    4000,
		NetAmount: 4000,
	}
	require.NoError(t, commit(t, st, []*models.Transaction{hold}, []Delta{{UserID: 9, Pending: 4000}}))
	assert.Equal(t, int64(4000), balanceOf(t, st, 9).PendingBalance)

	release := &models.Transaction{
		Reference:   "release-1",
		Type:        models.TxPayout,
		Status:      models.TxCompleted,
		Amount:      4000,
		PlatformFee: 400,
		NetAmount:   3600,
	}
	require.NoError(t, commit(t, st, []*models.Transaction{release}, []Delta{{UserID: 9, Balance: 3600, Pending: -4000}}))

	w := balanceOf(t, st, 9)
	assert.Equal(t, int64(0), w.PendingBalance)
	assert.Equal(t, int64(3600), w.Balance)
}
