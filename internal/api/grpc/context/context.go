package context

import (
	"context"
	"strconv"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/signalements-server/internal/model"
)

// Metadata keys carrying the authenticated caller.
const (
	userIDKey   string = "x-user-id"
	emailKey    string = "x-user-email"
	usernameKey string = "x-user-name"
	rolesKey    string = "x-user-roles"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager stores session claims in incoming gRPC metadata.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetClaimsToContext overwrites any caller-supplied values for the claim keys.
func (m *Manager) SetClaimsToContext(ctx context.Context, claims model.SessionClaims) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.MD{}
	} else {
		md = md.Copy()
	}

	md.Set(userIDKey, strconv.FormatInt(claims.UserID, 10))
	md.Set(emailKey, claims.Email)
	md.Set(usernameKey, claims.Username)
	md.Set(rolesKey, claims.Roles...)
	if len(claims.Roles) == 0 {
		md.Delete(rolesKey)
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetClaimsFromContext returns false when no valid user id is present.
func (m *Manager) GetClaimsFromContext(ctx context.Context) (model.SessionClaims, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.SessionClaims{}, false
	}

	ids := md.Get(userIDKey)
	if len(ids) == 0 {
		return model.SessionClaims{}, false
	}
	userID, err := strconv.ParseInt(ids[0], 10, 64)
	if err != nil {
		return model.SessionClaims{}, false
	}

	return model.SessionClaims{
		UserID:   userID,
		Email:    first(md.Get(emailKey)),
		Username: first(md.Get(usernameKey)),
		Roles:    md.Get(rolesKey),
	}, true
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
