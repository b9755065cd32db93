package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitweet/config"
)

func flashContext(t *testing.T, cookie string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		// Closed port forces the in-memory fallback queue.
		RedisHost: "127.0.0.1",
		RedisPort: 6399,
	})
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/", nil)
	if cookie != "" {
		ctx.Request.AddCookie(&http.Cookie{Name: "mt_session", Value: cookie})
	}
	return ctx
}

func TestSessionIDReusesCookie(t *testing.T) {
	ctx := flashContext(t, "session-abc")
	assert.Equal(t, "session-abc", SessionID(ctx))
	// Stable across calls in the same request.
	assert.Equal(t, "session-abc", SessionID(ctx))
}

func TestSessionIDMintsCookie(t *testing.T) {
	w := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("GET", "/", nil)

	sid := SessionID(ctx)
	require.NotEmpty(t, sid)
	assert.Equal(t, sid, SessionID(ctx), "minted id must be stable within the request")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "mt_session="+sid)
}

func TestFlashDrainsOnce(t *testing.T) {
	ctx := flashContext(t, "session-drain")
	Flash(ctx, "first")
	Flash(ctx, "second")

	msgs := PopFlashes("session-drain")
	require.Equal(t, []string{"first", "second"}, msgs)

	assert.Empty(t, PopFlashes("session-drain"), "a second drain must return nothing")
}

func TestFlashIsScopedToSession(t *testing.T) {
	ctx := flashContext(t, "session-a")
	Flash(ctx, "for a")

	assert.Empty(t, PopFlashes("session-b"))
	assert.Equal(t, []string{"for a"}, PopFlashes("session-a"))
}

func TestFlashIgnoresEmptyMessage(t *testing.T) {
	ctx := flashContext(t, "session-empty")
	Flash(ctx, "")
	assert.Empty(t, PopFlashes("session-empty"))
}
