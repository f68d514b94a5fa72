package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/usercontext"
	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

func eventService() *wizard.EventService {
	factory := repository.GetGlobalFactory()
	return wizard.NewEventService(factory.GetChurchRepository(), factory.GetEventRepository())
}

// HandleListMyEvents returns all events of the owner's church.
func HandleListMyEvents(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	events, err := eventService().List(userCtx.UserID)
	if err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
	})
}

// HandleGetMyEvent loads one event for editing; id 0 starts a fresh draft.
func HandleGetMyEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}

	overrideStep := 0
	if raw := c.Query("step"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return jsonError(c, fiber.StatusBadRequest, "Invalid step")
		}
		overrideStep = parsed
	}

	event, alreadyPublished, err := eventService().LoadOrInitialize(userCtx.UserID, uint(eventID), overrideStep)
	if err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"event":             event,
		"already_published": alreadyPublished,
	})
}

// HandleSaveEventStep validates and persists one wizard step of an event.
func HandleSaveEventStep(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	step, err := c.ParamsInt("step")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid step")
	}

	var payload wizard.EventPayload
	if err := c.BodyParser(&payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	event, fields, err := eventService().SaveStep(userCtx.UserID, step, payload)
	if err != nil {
		return wizardError(c, err)
	}
	if fields.Any() {
		return jsonValidationError(c, fields)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"event":   event,
	})
}

// HandleEventBack moves an event wizard one step back.
func HandleEventBack(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}

	event, err := eventService().GoBack(userCtx.UserID, uint(eventID))
	if err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"event":   event,
	})
}

// HandlePublishEvent flips an event to published.
func HandlePublishEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}

	event, fields, err := eventService().Publish(userCtx.UserID, uint(eventID))
	if err != nil {
		return wizardError(c, err)
	}
	if fields.Any() {
		return jsonValidationError(c, fields)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"event":   event,
	})
}

// HandleDeleteMyEvent removes one event of the owner's church.
func HandleDeleteMyEvent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	eventID, err := c.ParamsInt("id")
	if err != nil || eventID < 1 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid event id")
	}

	if err := eventService().Delete(userCtx.UserID, uint(eventID)); err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Event deleted",
	})
}
