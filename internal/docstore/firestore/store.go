// Package firestore adapts a Firestore client to model.DocumentStore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.DocumentStore = (*Store)(nil)

type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]model.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to list %s", collection), err)
	}
	return toDocuments(snaps), nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (model.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return model.Document{}, mapError(fmt.Sprintf("failed to get %s/%s", collection, id), err)
	}
	return model.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Store) WhereEqual(ctx context.Context, collection, field string, value any) ([]model.Document, error) {
	snaps, err := s.client.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to query %s by %s", collection, field), err)
	}
	return toDocuments(snaps), nil
}

// Set writes data under id. With merge, fields absent from data are kept.
func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data, opts...); err != nil {
		return mapError(fmt.Sprintf("failed to set %s/%s", collection, id), err)
	}
	return nil
}

// Update fails with model.ErrNotFound when the document does not exist.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, toUpdates(fields)); err != nil {
		return mapError(fmt.Sprintf("failed to update %s/%s", collection, id), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return mapError(fmt.Sprintf("failed to delete %s/%s", collection, id), err)
	}
	return nil
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []model.Document {
	docs := make([]model.Document, 0, len(snaps))
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		docs = append(docs, model.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs
}

// toUpdates orders field paths so that writes are deterministic.
func toUpdates(fields map[string]any) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: fields[k]})
	}
	return updates
}

func mapError(msg string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return model.ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%s: %w: %w", msg, model.ErrRemoteUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", msg, model.ErrRemoteUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
