package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-catalog/internal/domain"
)

const principalKey = "auth_principal"

// Middleware adapts the Gate to fiber routes.
type Middleware struct {
	gate *Gate
}

// NewMiddleware constructs middleware.
func NewMiddleware(gate *Gate) *Middleware {
	return &Middleware{gate: gate}
}

// Require authenticates every request and, when roles are given, demands one of them.
func (m *Middleware) Require(roles ...domain.Role) fiber.Handler {
	names := RoleNames(roles...)
	return func(c *fiber.Ctx) error {
		return m.gate.Guard(c.UserContext(), c.Get(fiber.HeaderAuthorization), names, func(_ context.Context, user *domain.User) error {
			c.Locals(principalKey, user)
			return c.Next()
		})
	}
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok && user != nil
}
