package middleware

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/model"
)

var (
	errMissingToken = errors.New("authorization token is missing")
	errInvalidToken = errors.New("authorization token is invalid")
)

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(token string) (model.SessionClaims, error)
}

// Authenticate validates bearer tokens and injects the session claims into context.
type Authenticate struct {
	tokens         TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokens TokenParser, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the authorization header and returns a context carrying the claims.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString, _ := auth.AuthFromMD(ctx, "bearer")

	claims, err := m.authenticate(tokenString)
	if err != nil {
		m.logger.Debug("Authenticate middleware: rejected request",
			"error", err.Error())
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return m.contextManager.SetClaimsToContext(ctx, claims), nil
}

func (m *Authenticate) authenticate(tokenString string) (model.SessionClaims, error) {
	if tokenString == "" {
		return model.SessionClaims{}, errMissingToken
	}

	claims, err := m.tokens.Parse(tokenString)
	if err != nil {
		return model.SessionClaims{}, errInvalidToken
	}
	if claims.UserID == 0 && claims.Email == "" {
		return model.SessionClaims{}, errInvalidToken
	}

	return claims, nil
}
