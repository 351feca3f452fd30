package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.PendingSyncStore = (*PendingSyncRepository)(nil)

type PendingSyncRepository struct {
	db *Connection
}

func NewPendingSyncRepository(db *Connection) *PendingSyncRepository {
	return &PendingSyncRepository{
		db: db,
	}
}

func (r *PendingSyncRepository) Enqueue(ctx context.Context, entry model.PendingSync) (model.PendingSync, error) {
	query := `INSERT INTO pending_sync (operation, payload, entity_type, entity_id, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, operation, payload, entity_type, entity_id, retry_count, error_message,
			      synced, created_at, synced_at`

	var saved model.PendingSync
	err := r.db.QueryRow(ctx, query,
		string(entry.Operation), []byte(entry.Payload), entry.EntityType, entry.EntityID, entry.CreatedAt,
	).Scan(
		&saved.ID, &saved.Operation, &saved.Payload, &saved.EntityType, &saved.EntityID,
		&saved.RetryCount, &saved.ErrorMessage, &saved.Synced, &saved.CreatedAt, &saved.SyncedAt,
	)
	if err != nil {
		return model.PendingSync{}, fmt.Errorf("failed to enqueue pending sync: %w", err)
	}

	return saved, nil
}

func (r *PendingSyncRepository) CountPending(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM pending_sync WHERE NOT synced`

	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending sync entries: %w", err)
	}
	return count, nil
}
