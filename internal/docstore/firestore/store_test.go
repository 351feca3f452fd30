package firestore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/signalements-server/internal/model"
)

func TestNewStore(t *testing.T) {
	client := &firestore.Client{}
	store := NewStore(client)

	assert.Equal(t, client, store.client)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantIs     error
		wantNotIs  error
		wantPrefix string
	}{
		{
			name:   "not found",
			err:    status.Error(codes.NotFound, "missing"),
			wantIs: model.ErrNotFound,
		},
		{
			name:       "unavailable",
			err:        status.Error(codes.Unavailable, "down"),
			wantIs:     model.ErrRemoteUnavailable,
			wantPrefix: "op: ",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			wantIs:     model.ErrRemoteUnavailable,
			wantPrefix: "op: ",
		},
		{
			name:       "permission denied",
			err:        status.Error(codes.PermissionDenied, "nope"),
			wantNotIs:  model.ErrRemoteUnavailable,
			wantPrefix: "op: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, got, tt.wantIs)
			}
			if tt.wantNotIs != nil {
				assert.False(t, errors.Is(got, tt.wantNotIs))
			}
			if tt.wantPrefix != "" {
				assert.Contains(t, got.Error(), tt.wantPrefix)
			}
		})
	}
}

func TestToUpdates_SortedPaths(t *testing.T) {
	updates := toUpdates(map[string]any{"username": "bob", "email": "b@example.com", "lastLogin": 1})

	paths := make([]string, 0, len(updates))
	for _, u := range updates {
		paths = append(paths, u.Path)
	}
	assert.Equal(t, []string{"email", "lastLogin", "username"}, paths)
	assert.Equal(t, "b@example.com", updates[0].Value)
}

func TestToDocuments_SkipsNil(t *testing.T) {
	docs := toDocuments([]*firestore.DocumentSnapshot{nil})
	assert.Empty(t, docs)
}
