package controllers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/churchatlas/churchatlas/internal/pkg/mediastore"
	"github.com/churchatlas/churchatlas/internal/pkg/photo"
	"github.com/churchatlas/churchatlas/internal/pkg/upload"
	"github.com/churchatlas/churchatlas/internal/pkg/usercontext"
)

// HandleImageUpload accepts a multipart image, normalizes it and stores it in
// the media bucket. Response: { "url": "..." }
func HandleImageUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "No file uploaded")
	}

	if fileHeader.Size > upload.MaxImageBytes {
		return jsonError(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", upload.MaxImageBytes/(1024*1024)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Failed to read upload")
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return jsonError(c, fiber.StatusBadRequest, "Failed to read upload")
	}
	contentType, err := upload.ValidateImageBySniff(fileHeader.Filename, head[:n])
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to read upload")
	}

	// WebP passes through without decoding, so its dimensions are not checked
	if contentType != "image/webp" {
		width, height, err := photo.Dimensions(file)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "The image could not be processed")
		}
		if width < photo.MinDimension || height < photo.MinDimension {
			return jsonError(c, fiber.StatusBadRequest,
				fmt.Sprintf("Image must be at least %dx%d pixels", photo.MinDimension, photo.MinDimension))
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "Failed to read upload")
		}
	}

	normalized, err := photo.Normalize(file, contentType)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "The image could not be processed")
	}

	store, err := mediastore.Default()
	if err != nil {
		fiberlog.Errorf("media storage unavailable: %v", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "Media storage is not available")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("listings/%d/%s%s", userCtx.UserID, uuid.NewString(), ext)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := store.Upload(ctx, key, contentType, normalized)
	if err != nil {
		fiberlog.Errorf("media upload failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "Upload failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
