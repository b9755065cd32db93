package utils

import (
	"github.com/gin-gonic/gin"

	"minitweet/validation"
)

// JSONResponse defines the uniform structure for API responses. Notices carry
// transient user-facing messages (the flash queue drained for this render);
// Errors carries field-level validation messages.
type JSONResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Notices []string          `json:"notices,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
		Notices: drainNotices(ctx),
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// SuccessWith returns a success response carrying notices the caller
// already drained, used on cacheable pages where Respond's own drain would
// come up empty.
func SuccessWith(ctx *gin.Context, data interface{}, notices []string) {
	ctx.JSON(200, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
		Notices: notices,
	})
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ValidationFailed re-renders the request with field-level messages. The
// status stays 200: the request was received but not fulfilled, and the
// caller is expected to correct the form and retry.
func ValidationFailed(ctx *gin.Context, fieldErrors validation.FieldErrors, data interface{}) {
	ctx.JSON(200, JSONResponse{
		Code:    40010,
		Message: "please correct the errors below",
		Data:    data,
		Errors:  fieldErrors,
		Notices: drainNotices(ctx),
	})
}

// drainNotices pops any flash messages queued for this session so they ride
// along with the next rendered response.
func drainNotices(ctx *gin.Context) []string {
	sid := SessionID(ctx)
	if sid == "" {
		return nil
	}
	return PopFlashes(sid)
}
