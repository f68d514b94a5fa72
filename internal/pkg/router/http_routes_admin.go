package router

import (
	"github.com/churchatlas/churchatlas/app/controllers"
	"github.com/churchatlas/churchatlas/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAPIAdminAuth)

	// Directory moderation
	adminGroup.Post("/churches/:id/archive", controllers.HandleAdminArchiveChurch)
	adminGroup.Post("/churches/:id/unarchive", controllers.HandleAdminUnarchiveChurch)
}
