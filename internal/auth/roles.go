package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

// RequireRole admits callers whose token role is in the allowed set. An
// empty set means any authenticated caller is enough. A token without a
// valid role is denied on every role-gated route.
func (g *Guard) RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return g.deny(c, denyNoToken, nil)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if !claims.Role.IsValid() {
			return g.deny(c, denyInsufficientRole, nil)
		}
		if _, exists := allowedSet[claims.Role]; !exists {
			return g.deny(c, denyInsufficientRole, nil)
		}
		return c.Next()
	}
}
