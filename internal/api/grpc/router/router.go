package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/signalements-server/internal/api/grpc/handler"
	"github.com/dtroode/signalements-server/internal/api/grpc/middleware"
	"github.com/dtroode/signalements-server/internal/api/grpc/signalementspb"
	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/model"
)

// Router builds the gRPC server with the Auth and Admin services.
type Router struct {
	authService    handler.AuthService
	syncService    handler.SyncService
	lockService    handler.LockService
	probe          handler.StatusProbe
	tokens         middleware.TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

func New(
	authService handler.AuthService,
	syncService handler.SyncService,
	lockService handler.LockService,
	probe handler.StatusProbe,
	tokens middleware.TokenParser,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		syncService:    syncService,
		lockService:    lockService,
		probe:          probe,
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

// authSkip selects the methods that need a session: everything except login and registration.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	switch c.FullMethod() {
	case signalementspb.Auth_Login_FullMethodName, signalementspb.Auth_Register_FullMethodName:
		return false
	}
	return true
}

// Register creates the gRPC server with logging and authentication interceptors.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)

	signalementspb.RegisterAuthServer(s, handler.NewAuth(r.authService, r.contextManager, r.logger))
	signalementspb.RegisterAdminServer(s, handler.NewAdmin(r.syncService, r.lockService, r.probe, r.contextManager, r.logger))

	return s
}
