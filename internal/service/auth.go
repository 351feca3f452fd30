package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/metrics"
	"github.com/dtroode/signalements-server/internal/model"
)

// DefaultSessionTTL is the validity window of issued session tokens.
const DefaultSessionTTL = time.Hour

const userEntity = "user"

// Auth authenticates and registers users against the identity provider when
// the remote side is reachable and against the relational store otherwise.
type Auth struct {
	users    model.UserStore
	docs     model.DocumentStore
	identity model.IdentityProvider
	probe    model.ConnectivityProbe
	attempts *LoginAttempts
	signer   model.TokenSigner
	pending  model.PendingSyncStore
	validate *validator.Validate
	logger   *logger.Logger
	ttl      time.Duration
	now      func() time.Time
}

func NewAuth(
	users model.UserStore,
	docs model.DocumentStore,
	identity model.IdentityProvider,
	probe model.ConnectivityProbe,
	attempts *LoginAttempts,
	signer model.TokenSigner,
	pending model.PendingSyncStore,
	logger *logger.Logger,
	ttl time.Duration,
) *Auth {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Auth{
		users:    users,
		docs:     docs,
		identity: identity,
		probe:    probe,
		attempts: attempts,
		signer:   signer,
		pending:  pending,
		validate: validator.New(),
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Authenticate checks the lock first, then the credentials on the remote or
// local path, and records the outcome before issuing a session.
func (a *Auth) Authenticate(ctx context.Context, creds model.Credentials) (model.Session, error) {
	creds.Email = model.NormalizeIdentity(creds.Email)
	if err := a.validate.Struct(creds); err != nil {
		return model.Session{}, err
	}
	identity := creds.Email

	if err := a.attempts.CheckIfLocked(ctx, identity); err != nil {
		var locked *model.AccountLockedError
		if errors.As(err, &locked) {
			metrics.ObserveAuth("lockout", metrics.OutcomeLocked)
			a.logger.Info("Auth service: rejected locked account",
				"identity", identity,
				"locked_until", locked.Until)
		}
		return model.Session{}, err
	}

	mode := model.AuthModeLocal
	var (
		user model.User
		err  error
	)
	if a.probe.IsOnline(ctx) {
		mode = model.AuthModeRemote
		user, err = a.authenticateRemote(ctx, identity, creds.Password)
		if errors.Is(err, model.ErrRemoteUnavailable) {
			a.logger.Warn("Auth service: identity provider unreachable, falling back to local",
				"identity", identity,
				"error", err.Error())
			mode = model.AuthModeLocal
		}
	}
	if mode == model.AuthModeLocal {
		user, err = a.authenticateLocal(ctx, identity, creds.Password)
	}

	if err != nil {
		if model.IsAuthFailure(err) {
			metrics.ObserveAuth(string(mode), metrics.OutcomeFailure)
			if recErr := a.attempts.RecordFailure(ctx, identity); recErr != nil {
				a.logger.Error("Auth service: failed to record failure",
					"identity", identity,
					"error", recErr.Error())
			}
			a.logger.Info("Auth service: authentication failed",
				"identity", identity,
				"mode", mode,
				"reason", err.Error())
		}
		return model.Session{}, err
	}

	if err := a.attempts.RecordSuccess(ctx, identity); err != nil {
		a.logger.Error("Auth service: failed to record success",
			"identity", identity,
			"error", err.Error())
	}
	metrics.ObserveAuth(string(mode), metrics.OutcomeSuccess)

	a.logger.Info("Auth service: user authenticated",
		"identity", identity,
		"user_id", user.ID,
		"mode", mode)

	return a.issue(user, mode)
}

func (a *Auth) authenticateLocal(ctx context.Context, identity, password string) (model.User, error) {
	user, err := a.users.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}
	return user, nil
}

// authenticateRemote verifies the password with the identity provider and
// then mirrors the account into the relational store.
func (a *Auth) authenticateRemote(ctx context.Context, identity, password string) (model.User, error) {
	remote, err := a.identity.VerifyPassword(ctx, identity, password)
	if err != nil {
		return model.User{}, err
	}

	return a.mirrorRemoteLogin(ctx, identity, password, remote), nil
}

// mirrorRemoteLogin is best-effort. When the local side cannot be written
// the session is built from the remote account alone.
func (a *Auth) mirrorRemoteLogin(ctx context.Context, identity, password string, remote model.RemoteUser) model.User {
	fallback := model.User{
		Username:    displayName(remote.DisplayName, identity),
		Email:       identity,
		FirebaseUID: &remote.UID,
		Roles:       []string{model.RoleUser},
	}

	user, err := a.users.GetByEmail(ctx, identity)
	switch {
	case errors.Is(err, model.ErrNotFound):
		hash, hashErr := hashPassword(password)
		if hashErr != nil {
			a.logger.Error("Auth service: failed to hash mirrored password",
				"identity", identity,
				"error", hashErr.Error())
			return fallback
		}
		user, err = a.users.Create(ctx, model.User{
			Username:     displayName(remote.DisplayName, identity),
			Email:        identity,
			PasswordHash: hash,
			FirebaseUID:  &remote.UID,
			Roles:        []string{model.RoleUser},
			CreatedAt:    a.now(),
		})
		if err != nil {
			a.logger.Error("Auth service: failed to mirror remote user",
				"identity", identity,
				"error", err.Error())
			return fallback
		}
	case err != nil:
		a.logger.Error("Auth service: failed to look up mirrored user",
			"identity", identity,
			"error", err.Error())
		return fallback
	default:
		a.refreshLocalCredentials(ctx, &user, password, remote.UID)
	}

	a.mirrorUserDocument(ctx, user, map[string]any{"lastLogin": a.now()})
	return user
}

// refreshLocalCredentials keeps the offline path usable after a password
// or UID change made on the remote side.
func (a *Auth) refreshLocalCredentials(ctx context.Context, user *model.User, password, uid string) {
	if user.FirebaseUID == nil || *user.FirebaseUID != uid {
		if err := a.users.SetFirebaseUID(ctx, user.ID, uid); err != nil {
			a.logger.Error("Auth service: failed to attach remote uid",
				"user_id", user.ID,
				"error", err.Error())
		} else {
			user.FirebaseUID = &uid
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
		return
	}
	hash, err := hashPassword(password)
	if err != nil {
		return
	}
	user.PasswordHash = hash
	if _, err := a.users.Update(ctx, *user); err != nil {
		a.logger.Error("Auth service: failed to refresh local password hash",
			"user_id", user.ID,
			"error", err.Error())
	}
}

// Register creates the account remotely when possible. Remote failures
// degrade to a local-only account plus a pending sync entry. Self-registered
// accounts always get the USER role.
func (a *Auth) Register(ctx context.Context, reg model.Registration) (model.Session, error) {
	reg.Email = model.NormalizeIdentity(reg.Email)
	if err := a.validate.Struct(reg); err != nil {
		return model.Session{}, err
	}
	identity := reg.Email

	_, err := a.users.GetByEmail(ctx, identity)
	if err == nil {
		return model.Session{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return model.Session{}, err
	}
	user := model.User{
		Username:     reg.Username,
		Email:        identity,
		PasswordHash: hash,
		Roles:        []string{model.RoleUser},
		CreatedAt:    a.now(),
	}

	mode := model.AuthModeLocal
	if a.probe.IsOnline(ctx) {
		remote, err := a.identity.CreateUser(ctx, identity, reg.Password, reg.Username)
		switch {
		case errors.Is(err, model.ErrEmailTaken):
			return model.Session{}, model.ErrEmailTaken
		case err != nil:
			a.logger.Warn("Auth service: remote registration failed, registering locally",
				"identity", identity,
				"error", err.Error())
		default:
			user.FirebaseUID = &remote.UID
			mode = model.AuthModeRemote
		}
	}

	user, err = a.users.Create(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"identity", identity,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	if mode == model.AuthModeRemote {
		a.mirrorUserDocument(ctx, user, nil)
	} else {
		a.enqueue(ctx, model.SyncOperationRegister, user.ID, map[string]any{
			"email":    user.Email,
			"username": user.Username,
			"roles":    user.Roles,
		})
	}

	a.logger.Info("Auth service: user registered",
		"identity", identity,
		"user_id", user.ID,
		"mode", mode)

	return a.issue(user, mode)
}

// UpdateUser writes the relational store first and mirrors the change
// remotely when online. Mirror failures are queued.
func (a *Auth) UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) (model.User, error) {
	upd.Email = model.NormalizeIdentity(upd.Email)
	if err := a.validate.Struct(upd); err != nil {
		return model.User{}, err
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if upd.Email != "" {
		email := upd.Email
		if email != user.Email {
			existing, err := a.users.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return model.User{}, model.ErrEmailTaken
			}
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
			}
		}
		user.Email = email
	}
	if upd.Username != "" {
		user.Username = upd.Username
	}
	if upd.Password != "" {
		hash, err := hashPassword(upd.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
	}

	user, err = a.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	payload := map[string]any{"email": user.Email, "username": user.Username}
	if !a.probe.IsOnline(ctx) {
		a.enqueue(ctx, model.SyncOperationUpdate, user.ID, payload)
		return user, nil
	}

	if user.FirebaseUID != nil {
		if err := a.identity.UpdateUser(ctx, *user.FirebaseUID, upd); err != nil {
			a.logger.Warn("Auth service: failed to mirror user update",
				"user_id", user.ID,
				"error", err.Error())
			a.enqueue(ctx, model.SyncOperationUpdate, user.ID, payload)
			return user, nil
		}
	}
	a.mirrorUserDocument(ctx, user, nil)

	a.logger.Info("Auth service: user updated",
		"user_id", user.ID)

	return user, nil
}

// mirrorUserDocument merges users/{id}; failures are queued for later.
func (a *Auth) mirrorUserDocument(ctx context.Context, user model.User, extra map[string]any) {
	if user.ID == 0 {
		return
	}

	data := map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"roles":     user.Roles,
		"createdAt": user.CreatedAt,
	}
	if user.FirebaseUID != nil {
		data["firebaseUid"] = *user.FirebaseUID
	}
	for k, v := range extra {
		data[k] = v
	}

	err := a.docs.Set(ctx, model.CollectionUsers, strconv.FormatInt(user.ID, 10), data, true)
	if err != nil {
		a.logger.Warn("Auth service: failed to mirror user document",
			"user_id", user.ID,
			"error", err.Error())
		a.enqueue(ctx, model.SyncOperationUpdate, user.ID, data)
	}
}

func (a *Auth) enqueue(ctx context.Context, op model.SyncOperation, userID int64, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("Auth service: failed to marshal pending sync payload",
			"operation", op,
			"error", err.Error())
		return
	}

	id := userID
	_, err = a.pending.Enqueue(ctx, model.PendingSync{
		Operation:  op,
		Payload:    raw,
		EntityType: userEntity,
		EntityID:   &id,
		CreatedAt:  a.now(),
	})
	if err != nil {
		a.logger.Error("Auth service: failed to enqueue pending sync",
			"operation", op,
			"user_id", userID,
			"error", err.Error())
	}
}

func (a *Auth) issue(user model.User, mode model.AuthMode) (model.Session, error) {
	claims := model.SessionClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Roles:    user.Roles,
	}

	token, expiresAt, err := a.signer.Sign(claims, a.ttl)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return model.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Roles:     user.Roles,
		Mode:      mode,
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
