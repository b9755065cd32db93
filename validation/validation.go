package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLen is the maximum tweet length in characters.
	MaxTextLen = 280
	// MaxImageBytes is the upload ceiling for attached images (5MB).
	MaxImageBytes = 5 * 1024 * 1024
)

// allowedImageTypes is the MIME whitelist for tweet attachments.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FieldErrors maps form field names to a single user-facing message each.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// CheckText validates tweet text length. Callers are expected to trim first.
func CheckText(text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > MaxTextLen {
		return fmt.Errorf("text must be at most %d characters", MaxTextLen)
	}
	return nil
}

// CheckImage validates an attachment by declared size and content type.
// The size check runs first and short-circuits, matching the form behavior.
func CheckImage(size int64, contentType string) error {
	if size > MaxImageBytes {
		return fmt.Errorf("image file size must be under 5MB")
	}
	if !allowedImageTypes[normalizeContentType(contentType)] {
		return fmt.Errorf("only JPEG, PNG, GIF and WebP images are allowed")
	}
	return nil
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
