package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/cache"
)

// HandleAdminArchiveChurch takes a listing out of the public directory.
// Archive is an admin-only transition; owners can only delete.
func HandleAdminArchiveChurch(c *fiber.Ctx) error {
	return setChurchStatus(c, models.ListingStatusArchived)
}

// HandleAdminUnarchiveChurch returns an archived listing to published.
func HandleAdminUnarchiveChurch(c *fiber.Ctx) error {
	return setChurchStatus(c, models.ListingStatusPublished)
}

func setChurchStatus(c *fiber.Ctx, status string) error {
	churchID, err := c.ParamsInt("id")
	if err != nil || churchID < 1 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid church id")
	}

	repo := repository.GetGlobalFactory().GetChurchRepository()
	church, err := repo.GetByID(uint(churchID))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "Church not found")
	}

	church.Status = status
	if err := repo.Update(church); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update church")
	}

	_ = cache.Delete("church:slug:" + church.Slug)

	return c.JSON(fiber.Map{
		"success": true,
		"church":  church,
	})
}
