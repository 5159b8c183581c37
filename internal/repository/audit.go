package repository

import (
	"context"

	"backstage/internal/database"
	"backstage/internal/models"
)

// AuditRepository is append-only: the engine exposes no update or delete for
// audit entries.
type AuditRepository struct {
	q database.Querier
}

func NewAuditRepository(q database.Querier) *AuditRepository {
	return &AuditRepository{q: q}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.q.QueryRowContext(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *AuditRepository) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, details, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
