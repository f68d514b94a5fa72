package photo

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return &buf
}

func TestDimensions(t *testing.T) {
	t.Parallel()

	w, h, err := Dimensions(pngBytes(t, 320, 180))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 320 || h != 180 {
		t.Fatalf("got %dx%d, want 320x180", w, h)
	}

	if _, _, err := Dimensions(strings.NewReader("not an image")); err == nil {
		t.Fatal("expected error for non-image bytes")
	}
}

func TestNormalize_DownscalesLongestEdge(t *testing.T) {
	t.Parallel()

	out, err := Normalize(pngBytes(t, 2000, 1000), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := imaging.Decode(out)
	if err != nil {
		t.Fatalf("decode normalized image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != MaxDimension || bounds.Dy() != MaxDimension/2 {
		t.Fatalf("got %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), MaxDimension, MaxDimension/2)
	}
}

func TestNormalize_KeepsImagesWithinBounds(t *testing.T) {
	t.Parallel()

	out, err := Normalize(pngBytes(t, 400, 300), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := imaging.Decode(out)
	if err != nil {
		t.Fatalf("decode normalized image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 300 {
		t.Fatalf("got %dx%d, want 400x300", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalize_WebPPassesThrough(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("raw webp bytes")
	out, err := Normalize(in, "image/webp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Fatal("webp input should pass through unmodified")
	}
}
