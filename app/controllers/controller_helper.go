package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

// churchCacheKeys lists the cache keys a church write invalidates. A rename
// must also drop the entry stored under the previous slug, or it keeps
// serving the stale record until the TTL runs out.
func churchCacheKeys(previousSlug, currentSlug string) []string {
	var keys []string
	if currentSlug != "" {
		keys = append(keys, "church:slug:"+currentSlug)
	}
	if previousSlug != "" && previousSlug != currentSlug {
		keys = append(keys, "church:slug:"+previousSlug)
	}
	return keys
}

// jsonError writes the standard error envelope
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// jsonValidationError writes a 400 with the per-field message map
func jsonValidationError(c *fiber.Ctx, fields wizard.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// wizardError maps listing lifecycle errors onto HTTP statuses.
// Ownership violations deliberately answer as not-found.
func wizardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wizard.ErrNotFound), errors.Is(err, wizard.ErrNotOwner):
		return jsonError(c, fiber.StatusNotFound, "Listing not found")
	case errors.Is(err, wizard.ErrNoChurch):
		return jsonError(c, fiber.StatusNotFound, "Create a church before adding events")
	case errors.Is(err, wizard.ErrDuplicateChurch):
		return jsonError(c, fiber.StatusConflict, "You have already created a church")
	case errors.Is(err, wizard.ErrEventLimit):
		return jsonError(c, fiber.StatusConflict, "Event limit reached: a church can have at most 3 events")
	case errors.Is(err, wizard.ErrUnknownStep):
		return jsonError(c, fiber.StatusBadRequest, "Unknown step")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "Something went wrong")
	}
}
