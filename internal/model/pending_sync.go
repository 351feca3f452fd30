package model

import (
	"context"
	"encoding/json"
	"time"
)

// SyncOperation is the kind of remote write a PendingSync entry stands for.
type SyncOperation string

const (
	SyncOperationCreate       SyncOperation = "CREATE"
	SyncOperationUpdate       SyncOperation = "UPDATE"
	SyncOperationDelete       SyncOperation = "DELETE"
	SyncOperationAuthenticate SyncOperation = "AUTHENTICATE"
	SyncOperationRegister     SyncOperation = "REGISTER"
)

// PendingSyncStore queues remote writes that could not be confirmed.
type PendingSyncStore interface {
	Enqueue(ctx context.Context, entry PendingSync) (PendingSync, error)
	CountPending(ctx context.Context) (int, error)
}

// PendingSync is one queued remote write.
type PendingSync struct {
	ID           int64
	Operation    SyncOperation
	Payload      json.RawMessage
	EntityType   string
	EntityID     *int64
	RetryCount   int
	ErrorMessage *string
	Synced       bool
	CreatedAt    time.Time
	SyncedAt     *time.Time
}
