// Package firebase implements model.IdentityProvider over Firebase Auth.
//
// Account management goes through the Admin SDK. Password verification is
// not part of the Admin SDK and goes through the Identity Toolkit relying
// party API with the project's web API key.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"

	"github.com/dtroode/signalements-server/internal/model"
)

// adminClient is the slice of *auth.Client used by the provider.
type adminClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

var _ model.IdentityProvider = (*Provider)(nil)

type Provider struct {
	admin   adminClient
	toolkit *identitytoolkit.Service
}

func NewProvider(admin *auth.Client, toolkit *identitytoolkit.Service) *Provider {
	return newProvider(admin, toolkit)
}

func newProvider(admin adminClient, toolkit *identitytoolkit.Service) *Provider {
	return &Provider{
		admin:   admin,
		toolkit: toolkit,
	}
}

func (p *Provider) CreateUser(ctx context.Context, email, password, displayName string) (model.RemoteUser, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return model.RemoteUser{}, model.ErrEmailTaken
		}
		return model.RemoteUser{}, fmt.Errorf("failed to create remote user: %w", wrapTransport(err))
	}

	return toRemoteUser(record), nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (model.RemoteUser, error) {
	record, err := p.admin.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return model.RemoteUser{}, model.ErrUserNotFound
		}
		return model.RemoteUser{}, fmt.Errorf("failed to get remote user: %w", wrapTransport(err))
	}

	return toRemoteUser(record), nil
}

// UpdateUser applies the non-empty fields of update.
func (p *Provider) UpdateUser(ctx context.Context, uid string, update model.UserUpdate) error {
	params := &auth.UserToUpdate{}
	changed := false
	if update.Email != "" {
		params = params.Email(update.Email)
		changed = true
	}
	if update.Password != "" {
		params = params.Password(update.Password)
		changed = true
	}
	if update.Username != "" {
		params = params.DisplayName(update.Username)
		changed = true
	}
	if !changed {
		return nil
	}

	if _, err := p.admin.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsUserNotFound(err) {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("failed to update remote user: %w", wrapTransport(err))
	}
	return nil
}

func (p *Provider) VerifyPassword(ctx context.Context, email, password string) (model.RemoteUser, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}

	resp, err := p.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return model.RemoteUser{}, classifyToolkitError(err)
	}

	return model.RemoteUser{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}, nil
}

func toRemoteUser(record *auth.UserRecord) model.RemoteUser {
	if record == nil || record.UserInfo == nil {
		return model.RemoteUser{}
	}
	return model.RemoteUser{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}

// classifyToolkitError maps relying party rejections (any other 4xx) onto
// the credential errors and 5xx or 429 onto ErrRemoteUnavailable.
func classifyToolkitError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		switch {
		case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
			return model.ErrUserNotFound
		case strings.HasPrefix(msg, "INVALID_PASSWORD"),
			strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(msg, "USER_DISABLED"):
			return model.ErrInvalidCredentials
		}
		switch {
		case gerr.Code >= http.StatusInternalServerError || gerr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("failed to verify password: %w: %w", model.ErrRemoteUnavailable, err)
		case gerr.Code >= http.StatusBadRequest:
			// TOO_MANY_ATTEMPTS_TRY_LATER, INVALID_EMAIL, MISSING_PASSWORD and
			// the like are rejections of this login attempt.
			return fmt.Errorf("failed to verify password: %w: %s", model.ErrInvalidCredentials, msg)
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return fmt.Errorf("failed to verify password: %w", wrapTransport(err))
}

func wrapTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", model.ErrRemoteUnavailable, err)
	}
	return err
}
