package utils

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Flash messages survive exactly one redirect: a handler queues a message
// against the caller's session and the next rendered response drains it.
// Redis keeps the queue when available; otherwise an in-memory map serves
// single-process deployments and tests.

const (
	sessionCookie = "mt_session"
	flashTTL      = 10 * time.Minute
)

var (
	flashFallback   = map[string][]string{}
	flashFallbackMu sync.Mutex
)

// SessionID returns the caller's session identifier, minting a cookie on
// first contact.
func SessionID(ctx *gin.Context) string {
	if v, ok := ctx.Get(sessionCookie); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	sid, err := ctx.Cookie(sessionCookie)
	if err != nil || sid == "" {
		sid = uuid.NewString()
		ctx.SetCookie(sessionCookie, sid, int(flashTTL.Seconds()*6*24), "/", "", false, true)
	}
	ctx.Set(sessionCookie, sid)
	return sid
}

// Flash queues a transient notification for the session.
func Flash(ctx *gin.Context, message string) {
	sid := SessionID(ctx)
	if sid == "" || message == "" {
		return
	}
	if RedisAvailable() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rc := GetRedis()
		key := "flash:" + sid
		if err := rc.RPush(rctx, key, message).Err(); err == nil {
			rc.Expire(rctx, key, flashTTL)
			return
		}
	}
	flashFallbackMu.Lock()
	flashFallback[sid] = append(flashFallback[sid], message)
	flashFallbackMu.Unlock()
}

// PopFlashes drains and returns all queued messages for the session.
func PopFlashes(sid string) []string {
	var msgs []string
	if RedisAvailable() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rc := GetRedis()
		key := "flash:" + sid
		if vals, err := rc.LRange(rctx, key, 0, -1).Result(); err == nil && len(vals) > 0 {
			rc.Del(rctx, key)
			msgs = append(msgs, vals...)
		}
	}
	flashFallbackMu.Lock()
	if local, ok := flashFallback[sid]; ok {
		msgs = append(msgs, local...)
		delete(flashFallback, sid)
	}
	flashFallbackMu.Unlock()
	return msgs
}
