package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// Route declares one endpoint together with its access requirements. Role
// sets live in this table rather than in handler annotations, so the guard
// performs a plain lookup at registration time. An empty Roles set on a
// protected route admits any authenticated caller.
type Route struct {
	Method    string
	Path      string
	Handler   fiber.Handler
	Protected bool
	Roles     []domain.Role
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Users  *handlers.UsersHandler
	Guard  *auth.Guard
}

// Routes builds the static routing table.
func Routes(cfg RouteConfig) []Route {
	return []Route{
		{Method: fiber.MethodGet, Path: "/health/live", Handler: cfg.Health.Live},
		{Method: fiber.MethodGet, Path: "/health/ready", Handler: cfg.Health.Ready},

		{Method: fiber.MethodPost, Path: "/auth/register", Handler: cfg.Auth.Register},
		{Method: fiber.MethodPost, Path: "/auth/login", Handler: cfg.Auth.Login},
		{Method: fiber.MethodPost, Path: "/auth/logout", Handler: cfg.Auth.Logout},

		{Method: fiber.MethodGet, Path: "/profile", Handler: cfg.Users.Profile, Protected: true},
		{Method: fiber.MethodGet, Path: "/users/email/:email", Handler: cfg.Users.GetByEmail, Protected: true,
			Roles: []domain.Role{domain.RoleAdmin}},
		{Method: fiber.MethodGet, Path: "/users/:id", Handler: cfg.Users.GetByID, Protected: true,
			Roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}},
	}
}

// RegisterRoutes wires the routing table into the Fiber app.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	for _, route := range Routes(cfg) {
		chain := make([]fiber.Handler, 0, 3)
		if route.Protected {
			chain = append(chain, cfg.Guard.Handle, cfg.Guard.RequireRole(route.Roles...))
		}
		chain = append(chain, route.Handler)
		app.Add(route.Method, route.Path, chain...)
	}
}
