package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/signalements-server/internal/api/grpc/signalementspb"
	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/model"
)

// SyncService defines reconciliation operations exposed to staff.
type SyncService interface {
	ForceSync(ctx context.Context) (model.SyncReport, error)
	LastReport() (model.SyncReport, bool)
	ArchivedReport(ctx context.Context, key string) (model.SyncReport, error)
}

// LockService defines lockout administration.
type LockService interface {
	UnlockUser(ctx context.Context, userID int64) error
	BlockedIdentities(ctx context.Context) ([]model.AccountLock, error)
}

// StatusProbe reports remote reachability and the address it checks.
type StatusProbe interface {
	model.ConnectivityProbe
	Address() string
}

var _ signalementspb.AdminServer = (*Admin)(nil)

// Admin handles staff-only endpoints. Every call requires the ADMIN or MANAGER role.
type Admin struct {
	syncService    SyncService
	lockService    LockService
	probe          StatusProbe
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAdmin(
	syncService SyncService,
	lockService LockService,
	probe StatusProbe,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Admin {
	return &Admin{
		syncService:    syncService,
		lockService:    lockService,
		probe:          probe,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Admin) requireStaff(ctx context.Context) (model.SessionClaims, error) {
	claims, ok := h.contextManager.GetClaimsFromContext(ctx)
	if !ok {
		return model.SessionClaims{}, status.Error(codes.Unauthenticated, "missing session")
	}
	if !claims.HasAnyRole(model.RoleAdmin, model.RoleManager) {
		return model.SessionClaims{}, status.Error(codes.PermissionDenied, "staff role required")
	}
	return claims, nil
}

// ForceSync runs a reconciliation pass. Being offline is reported in the
// response body rather than as an error.
func (h *Admin) ForceSync(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	claims, err := h.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Admin handler: forced sync requested", "user_id", claims.UserID)

	report, err := h.syncService.ForceSync(ctx)
	switch {
	case errors.Is(err, model.ErrOffline):
		return newStruct(map[string]any{
			"success": false,
			"message": "remote side is offline, nothing synchronized",
			"report":  reportStruct(report),
		})
	case err != nil:
		h.logger.Error("Admin handler: forced sync failed", "error", err.Error())
		return nil, handleError(err)
	}

	message := "synchronization completed"
	if report.Failed() {
		message = "synchronization completed with errors"
	}
	return newStruct(map[string]any{
		"success": !report.Failed(),
		"message": message,
		"report":  reportStruct(report),
	})
}

// UnlockUser clears the lockout of the user given by userId.
func (h *Admin) UnlockUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	claims, err := h.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	userID, ok := int64Field(req, "userId")
	if !ok || userID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "userId is required")
	}

	if err := h.lockService.UnlockUser(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		h.logger.Error("Admin handler: unlock failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Admin handler: user unlocked",
		"user_id", userID,
		"by", claims.UserID)

	return newStruct(map[string]any{"success": true})
}

// BlockedUsers lists identities currently inside their lockout window.
func (h *Admin) BlockedUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.requireStaff(ctx); err != nil {
		return nil, err
	}

	locks, err := h.lockService.BlockedIdentities(ctx)
	if err != nil {
		h.logger.Error("Admin handler: listing blocked users failed", "error", err.Error())
		return nil, handleError(err)
	}

	users := make([]any, 0, len(locks))
	for _, l := range locks {
		entry := map[string]any{
			"identity":       l.Identity,
			"failedAttempts": float64(l.FailedAttempts),
		}
		if l.LockedUntil != nil {
			entry["lockedUntil"] = l.LockedUntil.UTC().Format(time.RFC3339)
		}
		users = append(users, entry)
	}

	return newStruct(map[string]any{"users": users})
}

// ConnectionStatus reports whether the remote side is reachable now.
func (h *Admin) ConnectionStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.requireStaff(ctx); err != nil {
		return nil, err
	}

	return newStruct(map[string]any{
		"online":       h.probe.IsOnline(ctx),
		"probeAddress": h.probe.Address(),
	})
}

// LastSyncReport returns the archived report named by key, or the report
// of the latest pass when no key is given.
func (h *Admin) LastSyncReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.requireStaff(ctx); err != nil {
		return nil, err
	}

	if key := stringField(req, "key"); key != "" {
		report, err := h.syncService.ArchivedReport(ctx, key)
		if err != nil {
			h.logger.Warn("Admin handler: archived report unavailable",
				"key", key,
				"error", err.Error())
			return nil, handleError(err)
		}
		return newStruct(reportStruct(report))
	}

	report, ok := h.syncService.LastReport()
	if !ok {
		return nil, status.Error(codes.NotFound, "no synchronization has run yet")
	}
	return newStruct(reportStruct(report))
}
