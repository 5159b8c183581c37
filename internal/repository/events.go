package repository

import (
	"context"
	"database/sql"
	"time"

	"backstage/internal/database"
	"backstage/internal/errors"
	"backstage/internal/models"
)

type EventRepository struct {
	q database.Querier
}

func NewEventRepository(q database.Querier) *EventRepository {
	return &EventRepository{q: q}
}

func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, starts_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRowContext(ctx, query,
		event.OrganizerID,
		event.Title,
		event.StartsAt,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if uniqueViolation(err) == constraintOrganizerDate {
		return &errors.ScheduleConflictError{
			OrganizerID: event.OrganizerID,
			Date:        event.StartsAt.Format("2006-01-02"),
		}
	}
	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, organizer_id, title, starts_at, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.StartsAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "event", ID: id}
	}
	return event, err
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID int64) ([]models.Event, error) {
	query := `
		SELECT id, organizer_id, title, starts_at, created_at, updated_at
		FROM events
		WHERE organizer_id = $1
		ORDER BY starts_at ASC`

	rows, err := r.q.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.OrganizerID,
			&event.Title,
			&event.StartsAt,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepository) CountOnDate(ctx context.Context, organizerID int64, date time.Time, excludingEventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM events
		WHERE organizer_id = $1 AND DATE(starts_at) = DATE($2) AND id <> $3`

	var count int
	err := r.q.QueryRowContext(ctx, query, organizerID, date, excludingEventID).Scan(&count)
	return count, err
}
