package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/cache"
	"github.com/churchatlas/churchatlas/internal/pkg/database"
	"github.com/churchatlas/churchatlas/internal/pkg/mail"
	"github.com/churchatlas/churchatlas/internal/pkg/usercontext"
	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

func churchService() *wizard.ChurchService {
	return wizard.NewChurchService(repository.GetGlobalFactory().GetChurchRepository())
}

// HandleGetMyChurch loads the owner's church for editing, or a fresh draft
// shell if none exists yet. An explicit ?step=N re-opens a published listing
// at that step instead of signalling "already published".
func HandleGetMyChurch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	overrideStep := 0
	if raw := c.Query("step"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return jsonError(c, fiber.StatusBadRequest, "Invalid step")
		}
		overrideStep = parsed
	}

	church, alreadyPublished, err := churchService().LoadOrInitialize(userCtx.UserID, overrideStep)
	if err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"church":            church,
		"already_published": alreadyPublished,
	})
}

// HandleSaveChurchStep validates and persists one wizard step.
func HandleSaveChurchStep(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	step, err := c.ParamsInt("step")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid step")
	}

	var payload wizard.ChurchPayload
	if err := c.BodyParser(&payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	// Remember the slug before the save; a rename changes it
	priorSlug := ""
	if existing, err := repository.GetGlobalFactory().GetChurchRepository().GetByOwnerID(userCtx.UserID); err == nil {
		priorSlug = existing.Slug
	}

	church, fields, err := churchService().SaveStep(userCtx.UserID, step, payload)
	if err != nil {
		return wizardError(c, err)
	}
	if fields.Any() {
		return jsonValidationError(c, fields)
	}

	for _, key := range churchCacheKeys(priorSlug, church.Slug) {
		_ = cache.Delete(key)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"church":  church,
	})
}

// HandleChurchBack moves the wizard one step back without re-validation.
func HandleChurchBack(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	church, err := churchService().GoBack(userCtx.UserID)
	if err != nil {
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"church":  church,
	})
}

// HandlePublishChurch flips the listing to published.
func HandlePublishChurch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	church, fields, err := churchService().Publish(userCtx.UserID)
	if err != nil {
		return wizardError(c, err)
	}
	if fields.Any() {
		return jsonValidationError(c, fields)
	}

	_ = cache.Delete("church:slug:" + church.Slug)
	go sendPublishNotification(userCtx.UserID, church)

	return c.JSON(fiber.Map{
		"success": true,
		"church":  church,
	})
}

// HandleDeleteMyChurch removes the owner's church and its events.
func HandleDeleteMyChurch(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	priorSlug := ""
	if existing, err := repository.GetGlobalFactory().GetChurchRepository().GetByOwnerID(userCtx.UserID); err == nil {
		priorSlug = existing.Slug
	}

	if err := churchService().Delete(userCtx.UserID); err != nil {
		return wizardError(c, err)
	}

	if priorSlug != "" {
		_ = cache.Delete("church:slug:" + priorSlug)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Church deleted",
	})
}

func sendPublishNotification(userID uint, church *models.Church) {
	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return
	}

	subject := "Your church listing is live"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your listing <strong>%s</strong> is now published and visible in the directory.</p>",
		user.Name, church.Name,
	)
	if err := mail.SendMail(user.Email, subject, body); err != nil {
		fiberlog.Warnf("publish notification mail failed: %v", err)
	}
}
