package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/cache"
	"github.com/churchatlas/churchatlas/internal/pkg/metrics/counter"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	churchCacheTTL = 5 * time.Minute
)

// HandleSearchChurches serves the public directory with filters and paging.
func HandleSearchChurches(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	params := repository.ChurchSearchParams{
		Query:        c.Query("q"),
		State:        c.Query("state"),
		City:         c.Query("city"),
		Denomination: c.Query("denomination"),
		FeaturedOnly: c.QueryBool("featured", false),
		Offset:       (page - 1) * limit,
		Limit:        limit,
	}

	repo := repository.GetGlobalFactory().GetChurchRepository()
	churches, total, err := repo.Search(params, time.Now())
	if err != nil {
		fiberlog.Errorf("church search failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Search failed")
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return c.JSON(fiber.Map{
		"items":   churches,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   pages,
		"hasNext": page < pages,
		"hasPrev": page > 1 && total > 0,
	})
}

// HandleGetChurchBySlug serves a single published listing, cache-first.
func HandleGetChurchBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Slug missing")
	}

	cacheKey := "church:slug:" + slug
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		var church models.Church
		if err := json.Unmarshal([]byte(cached), &church); err == nil {
			_ = counter.AddChurchView(church.ID)
			return c.JSON(church)
		}
	}

	repo := repository.GetGlobalFactory().GetChurchRepository()
	church, err := repo.GetBySlug(slug)
	if err != nil || !church.IsPublished() {
		return jsonError(c, fiber.StatusNotFound, "Church not found")
	}

	if payload, err := json.Marshal(church); err == nil {
		if err := cache.Set(cacheKey, string(payload), churchCacheTTL); err != nil {
			fiberlog.Warnf("church cache write failed: %v", err)
		}
	}

	_ = counter.AddChurchView(church.ID)
	return c.JSON(church)
}

// HandleGetChurchEvents lists the published events of a church.
func HandleGetChurchEvents(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Slug missing")
	}

	factory := repository.GetGlobalFactory()
	church, err := factory.GetChurchRepository().GetBySlug(slug)
	if err != nil || !church.IsPublished() {
		return jsonError(c, fiber.StatusNotFound, "Church not found")
	}

	events, err := factory.GetEventRepository().GetPublishedByChurchID(church.ID)
	if err != nil {
		fiberlog.Errorf("event lookup failed for church %d: %v", church.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load events")
	}

	return c.JSON(fiber.Map{
		"items": events,
		"total": len(events),
	})
}

// HandleGetEventBySlug serves a single published event.
func HandleGetEventBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Slug missing")
	}

	event, err := repository.GetGlobalFactory().GetEventRepository().GetBySlug(slug)
	if err != nil || !event.IsPublished() {
		return jsonError(c, fiber.StatusNotFound, "Event not found")
	}

	_ = counter.AddEventView(event.ID)
	return c.JSON(event)
}
