package model

import "time"

// TokenSigner issues and validates session tokens.
type TokenSigner interface {
	Sign(claims SessionClaims, ttl time.Duration) (token string, expiresAt time.Time, err error)
	Parse(token string) (SessionClaims, error)
}

// SessionClaims is the identity embedded into a session token.
type SessionClaims struct {
	UserID   int64
	Email    string
	Username string
	Roles    []string
}

// HasAnyRole reports whether the claims carry at least one of roles.
func (c SessionClaims) HasAnyRole(roles ...string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
