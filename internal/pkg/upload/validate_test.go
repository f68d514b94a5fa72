package upload

import "testing"

func pngHead() []byte {
	return []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
}

func jpegHead() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
}

func gifHead() []byte {
	return []byte("GIF89a\x01\x00\x01\x00")
}

func TestValidateImageBySniff_AllowedTypes(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		head     []byte
		want     string
	}{
		{"png", "photo.png", pngHead(), "image/png"},
		{"jpeg", "photo.jpg", jpegHead(), "image/jpeg"},
		{"jpeg alt ext", "photo.jpeg", jpegHead(), "image/jpeg"},
		{"gif", "anim.gif", gifHead(), "image/gif"},
		{"upper case ext", "PHOTO.PNG", pngHead(), "image/png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := ValidateImageBySniff(tc.filename, tc.head)
			if err != nil {
				t.Fatalf("ValidateImageBySniff(%q) error: %v", tc.filename, err)
			}
			if mime != tc.want {
				t.Fatalf("ValidateImageBySniff(%q) = %q, want %q", tc.filename, mime, tc.want)
			}
		})
	}
}

func TestValidateImageBySniff_RejectsBadExtension(t *testing.T) {
	if _, err := ValidateImageBySniff("photo.svg", pngHead()); err == nil {
		t.Fatal("expected error for .svg extension")
	}
	if _, err := ValidateImageBySniff("script.exe", jpegHead()); err == nil {
		t.Fatal("expected error for .exe extension")
	}
	if _, err := ValidateImageBySniff("noext", pngHead()); err == nil {
		t.Fatal("expected error for missing extension")
	}
}

func TestValidateImageBySniff_RejectsScriptableContent(t *testing.T) {
	html := []byte("<!DOCTYPE html><html><body><script>alert(1)</script></body></html>")
	if _, err := ValidateImageBySniff("photo.png", html); err == nil {
		t.Fatal("expected error for HTML content behind image extension")
	}

	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	if _, err := ValidateImageBySniff("photo.png", svg); err == nil {
		t.Fatal("expected error for XML content behind image extension")
	}
}

func TestValidateImageBySniff_RejectsMismatchedContent(t *testing.T) {
	if _, err := ValidateImageBySniff("photo.png", []byte("\x00\x01\x02\x03 random bytes")); err == nil {
		t.Fatal("expected error for non-image bytes")
	}
}
