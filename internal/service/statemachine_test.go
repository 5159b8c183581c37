package service

import (
	"testing"

	"backstage/internal/errors"
	"backstage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextState_LegalTransitions(t *testing.T) {
	cases := []struct {
		from   models.BookingState
		action models.BookingAction
		to     models.BookingState
	}{
		{models.BookingPending, models.ActionAccept, models.BookingAccepted},
		{models.BookingPending, models.ActionDecline, models.BookingDeclined},
		{models.BookingPending, models.ActionCancel, models.BookingCancelled},
		{models.BookingAccepted, models.ActionPay, models.BookingPaid},
		{models.BookingAccepted, models.ActionCancel, models.BookingCancelled},
		{models.BookingPaid, models.ActionComplete, models.BookingCompleted},
		{models.BookingPaid, models.ActionCancel, models.BookingCancelled},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.action), func(t *testing.T) {
			to, err := nextState(&models.Booking{Status: tc.from}, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.to, to)
		})
	}
}

func TestNextState_IllegalTransitions(t *testing.T) {
	states := []models.BookingState{
		models.BookingPending, models.BookingAccepted, models.BookingPaid,
		models.BookingCompleted, models.BookingDeclined, models.BookingCancelled,
	}
	actions := []models.BookingAction{
		models.ActionAccept, models.ActionDecline, models.ActionPay,
		models.ActionComplete, models.ActionCancel,
	}

	legal := map[transitionKey]bool{}
	for k := range transitions {
		legal[k] = true
	}

	// Everything outside the transition table must fail, terminal states
	// included.
	for _, from := range states {
		for _, action := range actions {
			if legal[transitionKey{from: from, action: action}] {
				continue
			}
			_, err := nextState(&models.Booking{ID: 42, Status: from}, action)
			require.Error(t, err, "%s from %s must be illegal", action, from)
			assert.Equal(t, errors.CodeIllegalTransition, errors.CodeOf(err))
		}
	}
}

func TestAuthorize(t *testing.T) {
	booking := &models.Booking{
		OrganizerID:    10,
		CounterpartyID: 20,
		Status:         models.BookingPending,
	}

	org := models.Actor{ID: 10}
	cp := models.Actor{ID: 20}
	stranger := models.Actor{ID: 30}
	adm := models.Actor{ID: 1, Role: models.RoleAdmin}
	sys := models.Actor{Role: models.RoleSystem}

	cases := []struct {
		name    string
		actor   models.Actor
		action  models.BookingAction
		status  models.BookingState
		allowed bool
	}{
		{"counterparty accepts", cp, models.ActionAccept, models.BookingPending, true},
		{"organizer cannot accept", org, models.ActionAccept, models.BookingPending, false},
		{"counterparty declines", cp, models.ActionDecline, models.BookingPending, true},
		{"organizer pays", org, models.ActionPay, models.BookingAccepted, true},
		{"counterparty cannot pay", cp, models.ActionPay, models.BookingAccepted, false},
		{"system completes", sys, models.ActionComplete, models.BookingPaid, true},
		{"organizer completes", org, models.ActionComplete, models.BookingPaid, true},
		{"counterparty cannot complete", cp, models.ActionComplete, models.BookingPaid, false},
		{"organizer cancels pending", org, models.ActionCancel, models.BookingPending, true},
		{"counterparty cannot cancel pending", cp, models.ActionCancel, models.BookingPending, false},
		{"counterparty cancels accepted", cp, models.ActionCancel, models.BookingAccepted, true},
		{"stranger cannot cancel", stranger, models.ActionCancel, models.BookingAccepted, false},
		{"admin may do anything", adm, models.ActionDecline, models.BookingPending, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := *booking
			b.Status = tc.status
			err := authorize(tc.actor, &b, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, errors.CodeNotAuthorized, errors.CodeOf(err))
			}
		})
	}
}
