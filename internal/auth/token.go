package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// ErrTokenRevoked marks tokens invalidated via logout before natural expiry.
var ErrTokenRevoked = errors.New("token revoked")

const defaultTTLMinutes = 60

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
}

// NewTokenManager builds a new manager. A non-positive ttl falls back to 60
// minutes so a missing configuration value never produces tokenless or
// infinite-lived behavior. denylist may be nil when revocation is disabled.
func NewTokenManager(secret string, ttlMinutes int, denylist Denylist) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = defaultTTLMinutes
	}
	return &TokenManager{
		secret:   []byte(secret),
		ttl:      time.Duration(ttlMinutes) * time.Minute,
		denylist: denylist,
	}
}

// Claims describes the JWT payload.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the subject. Role is captured at
// issuance time; later role changes do not affect outstanding tokens.
func (tm *TokenManager) GenerateToken(subjectID, email string, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry, consults the denylist, and
// returns the claims. Expired tokens are rejected with no grace window.
func (tm *TokenManager) ParseToken(ctx context.Context, tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	if tm.denylist != nil && claims.ID != "" {
		revoked, err := tm.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// RevokeToken places the token id on the denylist for the token's remaining
// lifetime. The entry expires with the token itself, so the denylist never
// outgrows the set of live sessions.
func (tm *TokenManager) RevokeToken(ctx context.Context, claims *Claims) error {
	if tm.denylist == nil || claims.ID == "" {
		return nil
	}
	remaining := tm.ttl
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if remaining <= 0 {
		return nil
	}
	return tm.denylist.Revoke(ctx, claims.ID, remaining)
}
