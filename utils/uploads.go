package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"minitweet/config"
	"minitweet/validation"
)

// imageExtensions maps the accepted MIME types to stored file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveTweetImage validates and persists an uploaded image under the
// namespaced uploads directory, returning the public URL and the filesystem
// path. The byte count is enforced on the decoded stream, not only the
// declared header size.
func SaveTweetImage(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	contentType := header.Header.Get("Content-Type")
	if err := validation.CheckImage(header.Size, contentType); err != nil {
		return "", "", err
	}

	now := time.Now()
	baseDir := filepath.Join(config.Get().UploadsDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	ext := imageExtensions[normalizeType(contentType)]
	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: validation.MaxImageBytes + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	if written > validation.MaxImageBytes {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("image file size must be under 5MB")
	}

	url := "/" + filepath.ToSlash(dstPath)
	return url, dstPath, nil
}

// RemoveImage deletes a stored image file, ignoring already-gone files.
func RemoveImage(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		if Sugar != nil {
			Sugar.Warnf("failed to remove image %s: %v", path, err)
		}
	}
}

func normalizeType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
