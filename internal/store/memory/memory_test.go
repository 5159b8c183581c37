package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backstage/internal/errors"
	"backstage/internal/models"
	"backstage/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTx_RollbackRestoresEverything(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.InTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertEvent(ctx, &models.Event{OrganizerID: 1, Title: "kept", StartsAt: time.Now()}); err != nil {
			return err
		}
		return nil
	})
	require.NoError(t, err)

	boom := fmt.Errorf("boom")
	err = st.InTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertEvent(ctx, &models.Event{OrganizerID: 2, Title: "dropped", StartsAt: time.Now().AddDate(0, 0, 1)}); err != nil {
			return err
		}
		if _, err := tx.GetWalletForUpdate(ctx, 5); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, &models.Transaction{Reference: "r-1", Type: models.TxAdjustmentCredit, Status: models.TxCompleted, Amount: 100}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Only the first unit survived.
	events, err := st.ListEventsByOrganizer(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	dropped, err := st.ListEventsByOrganizer(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, dropped)

	_, err = st.GetWalletByUserID(ctx, 5)
	assert.Error(t, err)

	// The reference is free for reuse after the rollback.
	err = st.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertTransaction(ctx, &models.Transaction{Reference: "r-1", Type: models.TxAdjustmentCredit, Status: models.TxCompleted, Amount: 100})
	})
	assert.NoError(t, err)
}

func TestInsertBooking_ActiveTupleUniqueness(t *testing.T) {
	st := New()
	ctx := context.Background()

	booking := models.Booking{
		EventID:        1,
		OrganizerID:    10,
		CounterpartyID: 20,
		Status:         models.BookingPending,
		OfferedAmount:  100,
	}

	err := st.InTx(ctx, func(tx store.Tx) error {
		b := booking
		return tx.InsertBooking(ctx, &b)
	})
	require.NoError(t, err)

	err = st.InTx(ctx, func(tx store.Tx) error {
		b := booking
		return tx.InsertBooking(ctx, &b)
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateBooking, errors.CodeOf(err))
}

func TestInsertEvent_OrganizerDateUniqueness(t *testing.T) {
	st := New()
	ctx := context.Background()

	day := time.Date(2026, 10, 3, 20, 0, 0, 0, time.UTC)

	err := st.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertEvent(ctx, &models.Event{OrganizerID: 1, Title: "a", StartsAt: day})
	})
	require.NoError(t, err)

	err = st.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertEvent(ctx, &models.Event{OrganizerID: 1, Title: "b", StartsAt: day.Add(2 * time.Hour)})
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeScheduleConflict, errors.CodeOf(err))
}

func TestGetWalletForUpdate_LazyCreate(t *testing.T) {
	st := New()
	ctx := context.Background()

	var first, second *models.Wallet
	err := st.InTx(ctx, func(tx store.Tx) error {
		w, err := tx.GetWalletForUpdate(ctx, 42)
		if err != nil {
			return err
		}
		first = w
		w2, err := tx.GetWalletForUpdate(ctx, 42)
		if err != nil {
			return err
		}
		second = w2
		return nil
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(0), first.Balance)
}

func TestListPaidBookingsDue(t *testing.T) {
	st := New()
	ctx := context.Background()

	now := time.Now()
	mk := func(organizer int64, startsAt time.Time, status models.BookingState) {
		err := st.InTx(ctx, func(tx store.Tx) error {
			event := &models.Event{OrganizerID: organizer, Title: "e", StartsAt: startsAt}
			if err := tx.InsertEvent(ctx, event); err != nil {
				return err
			}
			return tx.InsertBooking(ctx, &models.Booking{
				EventID:        event.ID,
				OrganizerID:    organizer,
				CounterpartyID: organizer + 100,
				Status:         status,
				OfferedAmount:  100,
			})
		})
		require.NoError(t, err)
	}

	mk(1, now.Add(-time.Hour), models.BookingPaid)    // due
	mk(2, now.Add(time.Hour), models.BookingPaid)     // not started yet
	mk(3, now.Add(-time.Hour), models.BookingPending) // wrong state

	due, err := st.ListPaidBookingsDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(1), due[0].OrganizerID)
}
