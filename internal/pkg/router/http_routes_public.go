package router

import (
	"github.com/churchatlas/churchatlas/app/controllers"
	"github.com/churchatlas/churchatlas/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Stripe return legs after checkout. The success leg verifies the
	// session server-side; these are browser redirects, not API calls.
	app.Get("/featured/success", middleware.RequireAuth, controllers.HandleFeaturedSuccess)
	app.Get("/featured/cancel", loggedInMiddleware, controllers.HandleFeaturedCancel)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
