package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/directory"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/worker"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// Session is the result of a successful login or registration.
type Session struct {
	User      domain.PublicUser
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login, registration, logout and profile flows
// between the directory client, the password verifier and the token codec.
type AuthService struct {
	users      directory.Directory
	tokenMgr   *auth.TokenManager
	hashes     *worker.HashPool
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	Directory  directory.Directory
	Denylist   auth.Denylist
	HashPool   *worker.HashPool
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service. The signing secret and TTL are injected
// here; nothing reads them from global state.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.Directory,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, deps.Denylist),
		hashes:     deps.HashPool,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the identical UNAUTHORIZED error so callers cannot
// enumerate accounts. Directory unavailability is surfaced as-is.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			s.publish(ctx, events.EventLoginFailed, "", email, "")
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	var cmpErr error
	if err := s.hashes.Do(ctx, func() {
		cmpErr = auth.ComparePassword(user.PasswordHash, password)
	}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if cmpErr != nil {
		if !auth.IsPasswordMismatch(cmpErr) {
			// corrupted hash or engine failure; indistinguishable to callers
			s.logger.Error("password verification failed", zap.Error(cmpErr))
		}
		s.publish(ctx, events.EventLoginFailed, user.ID, email, "")
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventUserLoggedIn, user.ID, user.Email, user.Role)
	return session, nil
}

// Register hashes the password, delegates creation to the directory, and
// immediately issues a token for the new account. Duplicate emails surface
// as CONFLICT.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*Session, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	var (
		hash    string
		hashErr error
	)
	if err := s.hashes.Do(ctx, func() {
		hash, hashErr = auth.HashPassword(password, s.bcryptCost)
	}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if hashErr != nil {
		return nil, apperrors.NewInternalError(hashErr)
	}

	user, err := s.users.Create(ctx, domain.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventUserRegistered, user.ID, user.Email, user.Role)
	return session, nil
}

// Logout verifies the token and revokes its id for the token's remaining
// lifetime. The caller only ever learns whether the token was valid.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) (string, error) {
	claims, err := s.tokenMgr.ParseToken(ctx, tokenStr)
	if err != nil {
		return "", apperrors.NewUnauthorized("invalid token")
	}

	if err := s.tokenMgr.RevokeToken(ctx, claims); err != nil {
		s.logger.Error("failed to revoke token", zap.Error(err))
		return "", apperrors.NewUnavailable("unable to revoke session", err)
	}

	s.publish(ctx, events.EventUserLoggedOut, claims.Subject, claims.Email, claims.Role)
	return claims.Subject, nil
}

// Profile resolves a user by id and strips secret fields.
func (s *AuthService) Profile(ctx context.Context, id string) (domain.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// FindByEmail resolves a user by email and strips secret fields. Reachable
// only through role-gated admin routes; the login path never exposes lookup
// misses.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (domain.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// TokenManager exposes the underlying token manager for guard usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueSession(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return &Session{User: user.Public(), Token: token, ExpiresAt: exp}, nil
}

// normalizeEmail folds the case-insensitive identity key so lookups and
// uniqueness behave the same regardless of how the caller typed it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject, email string, role domain.Role) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Email:     email,
		Role:      role,
		Timestamp: time.Now(),
	})
}
