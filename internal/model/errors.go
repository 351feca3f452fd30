package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by stores when the requested row or document is absent.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound means no account matches the presented identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials means the account exists but the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRemoteUnavailable wraps transport failures of the remote store or identity provider.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrOffline is returned by operations that need the remote side while the probe reports offline.
	ErrOffline = errors.New("offline")
	// ErrEmailTaken is returned on registration of an already known email.
	ErrEmailTaken = errors.New("email is already taken")
)

// AccountLockedError is returned while an identity is inside its lockout window.
type AccountLockedError struct {
	Identity string
	Until    time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account %s locked until %s", e.Identity, e.Until.Format(time.RFC3339))
}

// IsAuthFailure reports whether err is one of the credential failures that
// must be collapsed into a single generic message at the API boundary.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials)
}
