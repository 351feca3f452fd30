package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/signalements-server/internal/mocks"
	"github.com/dtroode/signalements-server/internal/model"
	"github.com/dtroode/signalements-server/internal/testutil"
)

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.On("Authenticate", mock.Anything, model.Credentials{Email: "a@b.c", Password: "secret"}).
		Return(model.Session{
			Token:     "tok",
			ExpiresAt: expires,
			UserID:    7,
			Email:     "a@b.c",
			Username:  "alice",
			Roles:     []string{model.RoleUser},
			Mode:      model.AuthModeLocal,
		}, nil)

	h := NewAuth(svc, mocks.NewContextManager(t), testutil.MakeNoopLogger())
	out, err := h.Login(context.Background(), mustStruct(t, map[string]any{"email": "a@b.c", "password": "secret"}))
	require.NoError(t, err)

	fields := out.AsMap()
	assert.Equal(t, "tok", fields["token"])
	assert.Equal(t, "2026-01-02T03:04:05Z", fields["expiresAt"])
	assert.Equal(t, float64(7), fields["userId"])
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, []any{model.RoleUser}, fields["roles"])
	assert.Equal(t, "local", fields["mode"])
}

func TestAuth_Login_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{name: "unknown user", err: model.ErrUserNotFound, wantCode: codes.Unauthenticated},
		{name: "wrong password", err: model.ErrInvalidCredentials, wantCode: codes.Unauthenticated},
		{name: "locked", err: &model.AccountLockedError{Identity: "a@b.c", Until: time.Now().Add(time.Minute)}, wantCode: codes.PermissionDenied},
		{name: "internal", err: assert.AnError, wantCode: codes.Internal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			svc.On("Authenticate", mock.Anything, mock.Anything).Return(model.Session{}, tt.err)

			h := NewAuth(svc, mocks.NewContextManager(t), testutil.MakeNoopLogger())
			out, err := h.Login(context.Background(), mustStruct(t, map[string]any{"email": "a@b.c", "password": "x"}))
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, model.Registration{
		Email:    "new@b.c",
		Username: "newbie",
		Password: "secret1",
	}).Return(model.Session{Token: "tok", UserID: 3, Roles: []string{model.RoleUser}, Mode: model.AuthModeRemote}, nil)

	h := NewAuth(svc, mocks.NewContextManager(t), testutil.MakeNoopLogger())
	out, err := h.Register(context.Background(), mustStruct(t, map[string]any{
		"email":    "new@b.c",
		"username": "newbie",
		"password": "secret1",
		"role":     model.RoleManager,
	}))
	require.NoError(t, err)
	assert.Equal(t, "remote", out.AsMap()["mode"])
	assert.Equal(t, []any{model.RoleUser}, out.AsMap()["roles"])
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, mock.Anything).Return(model.Session{}, model.ErrEmailTaken)

	h := NewAuth(svc, mocks.NewContextManager(t), testutil.MakeNoopLogger())
	_, err := h.Register(context.Background(), mustStruct(t, map[string]any{"email": "a@b.c"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestAuth_UpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("uses caller id", func(t *testing.T) {
		t.Parallel()

		cm := mocks.NewContextManager(t)
		cm.On("GetClaimsFromContext", mock.Anything).Return(model.SessionClaims{UserID: 9, Email: "a@b.c"}, true)

		svc := mocks.NewAuthService(t)
		svc.On("UpdateUser", mock.Anything, int64(9), model.UserUpdate{Username: "renamed"}).
			Return(model.User{ID: 9, Email: "a@b.c", Username: "renamed", Roles: []string{model.RoleUser}}, nil)

		h := NewAuth(svc, cm, testutil.MakeNoopLogger())
		out, err := h.UpdateUser(context.Background(), mustStruct(t, map[string]any{"username": "renamed", "userId": 1}))
		require.NoError(t, err)
		assert.Equal(t, "renamed", out.AsMap()["username"])
		assert.Equal(t, float64(9), out.AsMap()["userId"])
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()

		cm := mocks.NewContextManager(t)
		cm.On("GetClaimsFromContext", mock.Anything).Return(model.SessionClaims{}, false)

		h := NewAuth(mocks.NewAuthService(t), cm, testutil.MakeNoopLogger())
		_, err := h.UpdateUser(context.Background(), mustStruct(t, map[string]any{"username": "x"}))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}
