package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/signalements-server/internal/model"
)

// ErrEmptySecret is returned when the signer is built without a secret.
var ErrEmptySecret = errors.New("jwt secret is empty")

// Config holds the signing key material.
type Config struct {
	// Secret is decoded as standard base64 when it decodes cleanly and is
	// used as raw UTF-8 bytes otherwise.
	Secret string
}

// Claims represents JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64    `json:"uid"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// JWT implements model.TokenSigner backed by symmetric HMAC.
type JWT struct {
	key []byte
	now func() time.Time
}

var _ model.TokenSigner = (*JWT)(nil)

// NewJWT creates a signer. It fails instead of deriving a key from an empty secret.
func NewJWT(cfg Config) (*JWT, error) {
	key, err := decodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &JWT{key: key, now: time.Now}, nil
}

func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) > 0 {
		return decoded, nil
	}
	return []byte(secret), nil
}

// Sign creates a token valid for ttl.
func (j *JWT) Sign(claims model.SessionClaims, ttl time.Duration) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Roles:    claims.Roles,
	})

	tokenString, err := token.SignedString(j.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Parse validates a token and extracts its claims.
func (j *JWT) Parse(tokenString string) (model.SessionClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.key, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return model.SessionClaims{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return model.SessionClaims{}, fmt.Errorf("session token is invalid")
	}

	return model.SessionClaims{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}
