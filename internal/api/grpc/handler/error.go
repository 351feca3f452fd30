package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/signalements-server/internal/model"
)

// handleError maps domain errors to gRPC statuses. Credential failures are
// collapsed into one message so callers cannot probe which emails exist.
func handleError(err error) error {
	var locked *model.AccountLockedError
	var invalid validator.ValidationErrors

	switch {
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Error())
	case errors.As(err, &locked):
		return status.Errorf(codes.PermissionDenied, "account locked until %s", locked.Until.UTC().Format(time.RFC3339))
	case model.IsAuthFailure(err):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, model.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, "email is already taken")
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, model.ErrOffline):
		return status.Error(codes.Unavailable, "remote side is offline")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
