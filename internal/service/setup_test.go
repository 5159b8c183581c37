package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backstage/internal/config"
	"backstage/internal/ledger"
	"backstage/internal/models"
	"backstage/internal/store"
	"backstage/internal/store/memory"

	"github.com/stretchr/testify/require"
)

const platformUserID = 99

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		PlatformFeeBps: 1000,
		RefundBps:      10000,
		PlatformUserID: platformUserID,
	}
}

func newTestEnv(t *testing.T) (*Services, *memory.Memory) {
	t.Helper()
	st := memory.New()
	return NewServices(st, nil, testPolicy()), st
}

func newTestEnvWithPolicy(t *testing.T, policy config.PolicyConfig) (*Services, *memory.Memory) {
	t.Helper()
	st := memory.New()
	return NewServices(st, nil, policy), st
}

// seedEvent creates an event for the organizer, offset by daysAhead so tests
// never trip the one-event-per-day rule by accident.
func seedEvent(t *testing.T, svc *Services, organizer models.Actor, daysAhead int) *models.Event {
	t.Helper()
	event, err := svc.Events.Create(context.Background(), organizer, &models.CreateEventRequest{
		Title:    fmt.Sprintf("Event in %d days", daysAhead),
		StartsAt: time.Now().AddDate(0, 0, daysAhead),
	})
	require.NoError(t, err)
	return event
}

// fund credits a user's wallet directly through the ledger, creating the
// wallet on the way. Returns the wallet ID.
func fund(t *testing.T, st *memory.Memory, userID, amount int64) int64 {
	t.Helper()
	led := ledger.New()

	var walletID int64
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		wallet, err := tx.GetWalletForUpdate(context.Background(), userID)
		if err != nil {
			return err
		}
		walletID = wallet.ID
		if amount == 0 {
			return nil
		}
		entry := &models.Transaction{
			Reference:   fmt.Sprintf("seed-%d-%d", userID, time.Now().UnixNano()),
			Type:        models.TxAdjustmentCredit,
			Status:      models.TxCompleted,
			Amount:      amount,
			NetAmount:   amount,
			RecipientID: &userID,
		}
		return led.Commit(context.Background(), tx, []*models.Transaction{entry},
			[]ledger.Delta{{UserID: userID, Balance: amount}})
	})
	require.NoError(t, err)
	return walletID
}

func wallet(t *testing.T, st *memory.Memory, userID int64) *models.Wallet {
	t.Helper()
	w, err := st.GetWalletByUserID(context.Background(), userID)
	require.NoError(t, err)
	return w
}
