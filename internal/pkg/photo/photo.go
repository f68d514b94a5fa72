// Package photo normalizes listing images before storage.
package photo

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// MaxDimension is the longest edge after normalization
	MaxDimension = 1600
	// MinDimension is the smallest acceptable edge for a listing image
	MinDimension = 200
)

// Normalize decodes an image and scales it down so its longest edge does not
// exceed MaxDimension. Images already within bounds are re-encoded unchanged.
// GIF and WebP pass through untouched to preserve animation.
func Normalize(r io.Reader, contentType string) (io.Reader, error) {
	if contentType == "image/gif" || contentType == "image/webp" {
		return r, nil
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, MaxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MaxDimension, imaging.Lanczos)
		}
	}

	format := imaging.JPEG
	if contentType == "image/png" {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &buf, nil
}

// Dimensions returns width and height without decoding the full image.
func Dimensions(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
