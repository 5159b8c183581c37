package service

import (
	"context"
	"testing"
	"time"

	"backstage/internal/errors"
	"backstage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCreate_ScheduleConflict(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	day := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)

	_, err := svc.Events.Create(ctx, organizer, &models.CreateEventRequest{
		Title:    "Evening show",
		StartsAt: day,
	})
	require.NoError(t, err)

	// Same organizer, same calendar date, different hour: still a conflict.
	_, err = svc.Events.Create(ctx, organizer, &models.CreateEventRequest{
		Title:    "Matinee",
		StartsAt: day.Add(-6 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeScheduleConflict, errors.CodeOf(err))

	// Next day is fine.
	_, err = svc.Events.Create(ctx, organizer, &models.CreateEventRequest{
		Title:    "Next day show",
		StartsAt: day.AddDate(0, 0, 1),
	})
	assert.NoError(t, err)

	// Another organizer on the same date is fine.
	_, err = svc.Events.Create(ctx, models.Actor{ID: 11}, &models.CreateEventRequest{
		Title:    "Competing show",
		StartsAt: day,
	})
	assert.NoError(t, err)
}

func TestEventCreate_RequiresTitle(t *testing.T) {
	svc, _ := newTestEnv(t)

	_, err := svc.Events.Create(context.Background(), organizer, &models.CreateEventRequest{
		StartsAt: time.Now().AddDate(0, 0, 1),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidArgument, errors.CodeOf(err))
}
