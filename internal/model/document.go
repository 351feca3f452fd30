package model

import "context"

// Document is a loosely-typed document of the remote store.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is the subset of the remote document database the core uses.
type DocumentStore interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	WhereEqual(ctx context.Context, collection, field string, value any) ([]Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// IdentityProvider is the remote authentication backend.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (RemoteUser, error)
	GetUserByEmail(ctx context.Context, email string) (RemoteUser, error)
	UpdateUser(ctx context.Context, uid string, update UserUpdate) error
	// VerifyPassword returns ErrUserNotFound or ErrInvalidCredentials for
	// credential problems and wraps ErrRemoteUnavailable for transport ones.
	VerifyPassword(ctx context.Context, email, password string) (RemoteUser, error)
}

// RemoteUser is an account of the identity provider.
type RemoteUser struct {
	UID         string
	Email       string
	DisplayName string
}
