package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ricardofreitas-dev/PagBem/internal/pkg/usercontext"
)

// RequireAPISessionAuth ensures a logged-in session for API routes and
// returns JSON 401 instead of a redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyFromProtected)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "UNAUTHORIZED",
			"message": "login required",
		})
	}
	return c.Next()
}

// SessionOrAPIKeyAuth accepts either an authenticated session or a valid
// API key. The session path is checked first because UserContextMiddleware
// already resolved it; the API key path hits the database.
func SessionOrAPIKeyAuth() fiber.Handler {
	apiKeyAuth := APIKeyAuthMiddleware()
	return func(c *fiber.Ctx) error {
		if usercontext.IsLoggedIn(c) {
			return c.Next()
		}
		return apiKeyAuth(c)
	}
}

// RequireAdmin ensures a logged-in admin session.
func RequireAdmin(c *fiber.Ctx) error {
	loggedIn := false
	if b, ok := c.Locals(usercontext.KeyFromProtected).(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "UNAUTHORIZED",
			"message": "login required",
		})
	}
	if isAdmin, ok := c.Locals(usercontext.KeyIsAdmin).(bool); !ok || !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "UNAUTHORIZED",
			"message": "admin required",
		})
	}
	return c.Next()
}
