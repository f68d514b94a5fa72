package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make converts a display name into a URL-safe slug: lowercase, runs of
// non-alphanumerics collapsed to single dashes, no leading/trailing dash.
func Make(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ExistsFunc reports whether a candidate slug is already taken.
type ExistsFunc func(candidate string) (bool, error)

// MakeUnique derives a slug from name and resolves collisions by appending an
// incrementing numeric suffix (-1, -2, ...) until a free slug is found.
func MakeUnique(name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	if base == "" {
		base = "listing"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
