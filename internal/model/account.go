package model

import (
	"context"
	"time"
)

// AccountLockStore persists per-identity lockout state.
type AccountLockStore interface {
	Get(ctx context.Context, identity string) (AccountLock, error)
	// RegisterFailure increments the failure counter in a single atomic
	// statement, creating the row if absent. When the new count reaches
	// maxAttempts the row is locked until lockUntil.
	RegisterFailure(ctx context.Context, identity string, maxAttempts int, lockUntil time.Time) (AccountLock, error)
	Delete(ctx context.Context, identity string) error
	ListLocked(ctx context.Context, now time.Time) ([]AccountLock, error)
}

// LoginAttemptStore is an append-only ledger of authentication tries.
type LoginAttemptStore interface {
	Append(ctx context.Context, attempt LoginAttempt) error
}

// AccountLock is the lockout record of one normalized identity.
type AccountLock struct {
	Identity       string
	FailedAttempts int
	Locked         bool
	LockedUntil    *time.Time
}

// ActiveAt reports whether the lock rejects logins at the given instant.
// A lock whose window has elapsed is usable even if the flag was never cleared.
func (l AccountLock) ActiveAt(now time.Time) bool {
	return l.Locked && l.LockedUntil != nil && l.LockedUntil.After(now)
}

// LoginAttempt is one immutable audit entry.
type LoginAttempt struct {
	ID          int64
	Identity    string
	AttemptedAt time.Time
	Success     bool
}
