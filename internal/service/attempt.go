package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/model"
)

// AttemptPolicy configures the lockout state machine.
type AttemptPolicy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// LoginAttempts tracks failed logins per normalized identity and locks an
// identity for LockoutDuration once MaxAttempts consecutive failures are seen.
type LoginAttempts struct {
	locks    model.AccountLockStore
	attempts model.LoginAttemptStore
	users    model.UserStore
	policy   AttemptPolicy
	logger   *logger.Logger
	now      func() time.Time
}

func NewLoginAttempts(
	locks model.AccountLockStore,
	attempts model.LoginAttemptStore,
	users model.UserStore,
	policy AttemptPolicy,
	logger *logger.Logger,
) *LoginAttempts {
	return &LoginAttempts{
		locks:    locks,
		attempts: attempts,
		users:    users,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckIfLocked returns *model.AccountLockedError while the identity's lock
// window is open. Elapsed windows pass even if the flag was never cleared.
func (s *LoginAttempts) CheckIfLocked(ctx context.Context, identity string) error {
	identity = model.NormalizeIdentity(identity)

	lock, err := s.locks.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account lock: %w", err)
	}

	if lock.ActiveAt(s.now()) {
		return &model.AccountLockedError{Identity: identity, Until: *lock.LockedUntil}
	}
	return nil
}

func (s *LoginAttempts) RecordFailure(ctx context.Context, identity string) error {
	identity = model.NormalizeIdentity(identity)
	now := s.now()

	s.appendAttempt(ctx, identity, now, false)

	lock, err := s.locks.RegisterFailure(ctx, identity, s.policy.MaxAttempts, now.Add(s.policy.LockoutDuration))
	if err != nil {
		s.logger.Error("Attempt service: failed to register failure",
			"identity", identity,
			"error", err.Error())
		return fmt.Errorf("failed to register login failure: %w", err)
	}

	if lock.ActiveAt(now) {
		s.logger.Warn("Attempt service: account locked",
			"identity", identity,
			"failed_attempts", lock.FailedAttempts,
			"locked_until", lock.LockedUntil)
	} else {
		s.logger.Info("Attempt service: failed attempt recorded",
			"identity", identity,
			"failed_attempts", lock.FailedAttempts,
			"remaining", s.policy.MaxAttempts-lock.FailedAttempts)
	}

	return nil
}

// RecordSuccess resets the failure counter by deleting the lock record.
func (s *LoginAttempts) RecordSuccess(ctx context.Context, identity string) error {
	identity = model.NormalizeIdentity(identity)

	s.appendAttempt(ctx, identity, s.now(), true)

	if err := s.locks.Delete(ctx, identity); err != nil {
		return fmt.Errorf("failed to reset account lock: %w", err)
	}
	return nil
}

func (s *LoginAttempts) Unlock(ctx context.Context, identity string) error {
	identity = model.NormalizeIdentity(identity)

	if err := s.locks.Delete(ctx, identity); err != nil {
		return fmt.Errorf("failed to unlock account: %w", err)
	}

	s.logger.Info("Attempt service: account unlocked",
		"identity", identity)
	return nil
}

// UnlockUser unlocks the identity of the user with the given id.
func (s *LoginAttempts) UnlockUser(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	return s.Unlock(ctx, user.Email)
}

// BlockedIdentities lists the locks in force now.
func (s *LoginAttempts) BlockedIdentities(ctx context.Context) ([]model.AccountLock, error) {
	locks, err := s.locks.ListLocked(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list locked accounts: %w", err)
	}
	return locks, nil
}

// appendAttempt writes to the audit ledger. A ledger failure must not
// change the outcome of the login.
func (s *LoginAttempts) appendAttempt(ctx context.Context, identity string, at time.Time, success bool) {
	err := s.attempts.Append(ctx, model.LoginAttempt{
		Identity:    identity,
		AttemptedAt: at,
		Success:     success,
	})
	if err != nil {
		s.logger.Error("Attempt service: failed to append login attempt",
			"identity", identity,
			"success", success,
			"error", err.Error())
	}
}
