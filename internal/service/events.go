package service

import (
	"context"

	"backstage/internal/errors"
	"backstage/internal/guard"
	"backstage/internal/models"
	"backstage/internal/store"
)

// EventService is the minimal event surface the engine needs: bookings
// reference events, and the schedule guard applies when an organizer creates
// or moves one.
type EventService struct {
	store store.Store
	guard *guard.ConflictGuard
}

func NewEventService(st store.Store, g *guard.ConflictGuard) *EventService {
	return &EventService{store: st, guard: g}
}

func (s *EventService) Create(ctx context.Context, actor models.Actor, req *models.CreateEventRequest) (*models.Event, error) {
	if req.Title == "" {
		return nil, &errors.InvalidArgumentError{Reason: "title is required"}
	}

	event := &models.Event{
		OrganizerID: actor.ID,
		Title:       req.Title,
		StartsAt:    req.StartsAt,
	}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.guard.CheckNoDateConflict(ctx, tx, actor.ID, req.StartsAt, 0); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) ListByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error) {
	return s.store.ListEventsByOrganizer(ctx, organizerID)
}
