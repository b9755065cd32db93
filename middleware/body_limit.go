package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"minitweet/utils"
	"minitweet/validation"
)

// BodyLimit rejects file-bearing POST requests whose declared Content-Length
// exceeds the upload ceiling, before any handler logic runs. This is a
// coarse check that trusts the header; the form layer inspects the actual
// decoded upload size.
//
// The caller is redirected to the most useful page: the tweet detail page
// when the path implies a reply or update, otherwise the list. When no
// target can be derived, a plain-text 400 is returned.
func BodyLimit(mountPrefix string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost {
			ctx.Next()
			return
		}
		contentType := ctx.GetHeader("Content-Type")
		if !strings.Contains(contentType, "multipart/form-data") {
			ctx.Next()
			return
		}
		if ctx.Request.ContentLength <= validation.MaxImageBytes {
			ctx.Next()
			return
		}

		utils.Sugar.Warnf("request too large: %d bytes from %s", ctx.Request.ContentLength, ctx.ClientIP())
		utils.Flash(ctx, "File too large! Maximum file size is 5MB. Please try uploading a smaller file.")

		if target, ok := redirectTarget(mountPrefix, ctx.Request.URL.Path); ok {
			ctx.Redirect(http.StatusFound, target)
			ctx.Abort()
			return
		}

		ctx.String(http.StatusBadRequest, "File too large! Maximum file size is 5MB.")
		ctx.Abort()
	}
}

// redirectTarget maps an oversized request's path to the page the caller
// should land on.
func redirectTarget(mountPrefix, path string) (string, bool) {
	if !strings.HasPrefix(path, mountPrefix) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, mountPrefix), "/")
	if rest == "" || rest == "create" {
		return mountPrefix, true
	}
	parts := strings.Split(rest, "/")
	if len(parts) == 2 && (parts[1] == "reply" || parts[1] == "update") {
		return mountPrefix + "/" + parts[0], true
	}
	return mountPrefix, true
}
