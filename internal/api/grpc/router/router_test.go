package router

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpcctx "github.com/dtroode/signalements-server/internal/api/grpc/context"
	"github.com/dtroode/signalements-server/internal/api/grpc/signalementspb"
	"github.com/dtroode/signalements-server/internal/mocks"
	"github.com/dtroode/signalements-server/internal/model"
	"github.com/dtroode/signalements-server/internal/testutil"
)

type fixedProbe struct{ online bool }

func (p fixedProbe) IsOnline(context.Context) bool { return p.online }
func (p fixedProbe) Address() string               { return "probe:443" }

type routerFixture struct {
	auth   *mocks.AuthService
	sync   *mocks.SyncService
	locks  *mocks.LockService
	tokens *mocks.TokenParser
	client *signalementspb.Client
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()

	f := routerFixture{
		auth:   mocks.NewAuthService(t),
		sync:   mocks.NewSyncService(t),
		locks:  mocks.NewLockService(t),
		tokens: mocks.NewTokenParser(t),
	}

	r := New(f.auth, f.sync, f.locks, fixedProbe{online: true}, f.tokens, grpcctx.NewManager(), testutil.MakeNoopLogger())
	srv := r.Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	f.client = signalementspb.NewClient(conn)
	return f
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestRouter_LoginSkipsAuthentication(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.auth.On("Authenticate", mock.Anything, model.Credentials{Email: "a@b.c", Password: "pw"}).
		Return(model.Session{Token: "tok", UserID: 1, Mode: model.AuthModeLocal}, nil)

	in, err := structpb.NewStruct(map[string]any{"email": "a@b.c", "password": "pw"})
	require.NoError(t, err)

	out, err := f.client.Call(context.Background(), signalementspb.Auth_Login_FullMethodName, in)
	require.NoError(t, err)
	assert.Equal(t, "tok", out.AsMap()["token"])
}

func TestRouter_ProtectedMethodNeedsToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	_, err := f.client.Call(context.Background(), signalementspb.Auth_UpdateUser_FullMethodName, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = f.client.Call(context.Background(), signalementspb.Admin_ConnectionStatus_FullMethodName, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRouter_ClaimsReachHandlers(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.tokens.On("Parse", "user-token").Return(model.SessionClaims{UserID: 4, Email: "u@b.c", Roles: []string{model.RoleUser}}, nil)
	f.tokens.On("Parse", "admin-token").Return(model.SessionClaims{UserID: 1, Email: "admin@b.c", Roles: []string{model.RoleAdmin}}, nil)
	f.auth.On("UpdateUser", mock.Anything, int64(4), model.UserUpdate{Username: "u2"}).
		Return(model.User{ID: 4, Email: "u@b.c", Username: "u2"}, nil)

	in, err := structpb.NewStruct(map[string]any{"username": "u2"})
	require.NoError(t, err)
	out, err := f.client.Call(withToken("user-token"), signalementspb.Auth_UpdateUser_FullMethodName, in)
	require.NoError(t, err)
	assert.Equal(t, "u2", out.AsMap()["username"])

	_, err = f.client.Call(withToken("user-token"), signalementspb.Admin_ConnectionStatus_FullMethodName, &structpb.Struct{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err = f.client.Call(withToken("admin-token"), signalementspb.Admin_ConnectionStatus_FullMethodName, &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, true, out.AsMap()["online"])
	assert.Equal(t, "probe:443", out.AsMap()["probeAddress"])
}
