package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const claimsKey = "auth_claims"

// Denial reasons, kept internal. Callers always see a single 401.
const (
	denyNoToken          = "no_token"
	denyInvalidToken     = "invalid_token"
	denyInsufficientRole = "insufficient_role"
)

// Guard validates bearer tokens and attaches claims to the request context.
// It is stateless: authorization decisions are made from the claims alone,
// with no per-request lookup against the user directory.
type Guard struct {
	tokens  *TokenManager
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGuard constructs the request guard.
func NewGuard(tokens *TokenManager, logger *zap.Logger, metrics *observability.Metrics) *Guard {
	return &Guard{tokens: tokens, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (g *Guard) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return g.deny(c, denyNoToken, nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return g.deny(c, denyNoToken, nil)
	}

	claims, err := g.tokens.ParseToken(c.Context(), parts[1])
	if err != nil {
		return g.deny(c, denyInvalidToken, err)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func (g *Guard) deny(c *fiber.Ctx, reason string, err error) error {
	g.metrics.RecordAuthDenial(c.Path(), reason)
	if g.logger != nil {
		g.logger.Debug("request denied",
			zap.String("path", c.Path()),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
	return apperrors.NewUnauthorized("unauthorized")
}

// ClaimsFromContext retrieves the verified claims attached by Handle.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
