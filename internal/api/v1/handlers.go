package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/churchatlas/churchatlas/app/controllers"
	"github.com/churchatlas/churchatlas/internal/pkg/middleware"
)

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/ping", s.GetPing)

	// Public directory
	r.Get("/churches", controllers.HandleSearchChurches)
	r.Get("/churches/:slug", controllers.HandleGetChurchBySlug)
	r.Get("/churches/:slug/events", controllers.HandleGetChurchEvents)
	r.Get("/events/:slug", controllers.HandleGetEventBySlug)

	// Owner endpoints (session auth)
	my := r.Group("/my", middleware.RequireAPISessionAuth)
	my.Get("/church", controllers.HandleGetMyChurch)
	my.Post("/church/steps/:step", controllers.HandleSaveChurchStep)
	my.Post("/church/back", controllers.HandleChurchBack)
	my.Post("/church/publish", controllers.HandlePublishChurch)
	my.Delete("/church", controllers.HandleDeleteMyChurch)

	my.Get("/events", controllers.HandleListMyEvents)
	my.Get("/events/:id", controllers.HandleGetMyEvent)
	my.Post("/events/steps/:step", controllers.HandleSaveEventStep)
	my.Post("/events/:id/back", controllers.HandleEventBack)
	my.Post("/events/:id/publish", controllers.HandlePublishEvent)
	my.Delete("/events/:id", controllers.HandleDeleteMyEvent)

	my.Post("/:kind/:id/featured/checkout", controllers.HandleFeaturedCheckout)

	// Account + media
	auth := r.Group("", middleware.RequireAPISessionAuth)
	auth.Get("/me", controllers.HandleGetMe)
	auth.Post("/upload", controllers.HandleImageUpload)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}
