package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/signalements-server/internal/api/grpc/signalementspb"
	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/model"
)

// AuthService defines hybrid authentication operations.
type AuthService interface {
	Authenticate(ctx context.Context, creds model.Credentials) (model.Session, error)
	Register(ctx context.Context, reg model.Registration) (model.Session, error)
	UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) (model.User, error)
}

var _ signalementspb.AuthServer = (*Auth)(nil)

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Login authenticates email and password and returns a session token.
func (h *Auth) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	h.logger.Debug("Auth handler: processing login request", "email", email)

	session, err := h.authService.Authenticate(ctx, model.Credentials{
		Email:    email,
		Password: stringField(req, "password"),
	})
	if err != nil {
		h.logger.Warn("Auth handler: login failed",
			"email", email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", session.UserID,
		"mode", session.Mode)

	return sessionStruct(session)
}

// Register creates a USER account and returns a session token. A role field
// in the request is ignored.
func (h *Auth) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	h.logger.Debug("Auth handler: processing registration request", "email", email)

	session, err := h.authService.Register(ctx, model.Registration{
		Email:    email,
		Username: stringField(req, "username"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		h.logger.Warn("Auth handler: registration failed",
			"email", email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", session.UserID,
		"mode", session.Mode)

	return sessionStruct(session)
}

// UpdateUser changes the profile of the caller.
func (h *Auth) UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	claims, ok := h.contextManager.GetClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}

	user, err := h.authService.UpdateUser(ctx, claims.UserID, model.UserUpdate{
		Username: stringField(req, "username"),
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		h.logger.Error("Auth handler: profile update failed",
			"user_id", claims.UserID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: profile updated", "user_id", user.ID)

	return newStruct(map[string]any{
		"userId":   float64(user.ID),
		"email":    user.Email,
		"username": user.Username,
		"roles":    rolesList(user.Roles),
	})
}
