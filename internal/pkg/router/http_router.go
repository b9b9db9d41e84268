package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ricardofreitas-dev/PagBem/app/controllers"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/middleware"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerAuthRoutes(app)
	h.registerWebhookRoutes(app)
}

func (h HttpRouter) registerAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", controllers.HandleLogout)
	auth.Post("/api-key", middleware.RequireAPISessionAuth, controllers.HandleGenerateAPIKey)
}

// registerWebhookRoutes wires provider callbacks. These are unauthenticated
// on purpose; the HMAC signature is the authentication.
func (h HttpRouter) registerWebhookRoutes(app *fiber.App) {
	app.Post("/webhooks/lytex", controllers.HandleLytexWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
