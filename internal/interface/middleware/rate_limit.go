package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

// ipFromCtx returns the address RealIP resolved, then gin's guess, then "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the counter key a request is charged to.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// KeyByIP limits by client IP only.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath gives every route its own budget per client IP. Used for
// login and register so a burst on one does not lock out the other.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers per user, anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// fixedWindow increments the counter, starts the window on the first hit and
// returns {count, remaining ttl in ms} in a single round trip.
var fixedWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type quota struct {
	count int64
	reset time.Duration
}

func take(ctx context.Context, rdb redis.Scripter, key string, window time.Duration) (quota, error) {
	res, err := fixedWindow.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return quota{}, err
	}
	if len(res) != 2 {
		return quota{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	q := quota{count: res[0]}
	if res[1] > 0 {
		q.reset = time.Duration(res[1]) * time.Millisecond
	}
	return q, nil
}

// RateLimit allows max requests per window for each key. It sets the
// X-RateLimit-* headers, answers 429 with Retry-After once the budget is
// spent and fails open when Redis errors. OPTIONS requests are never counted.
func RateLimit(rdb redis.Scripter, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		q, err := take(c.Request.Context(), rdb, keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}

		resetSec := int((q.reset + time.Second - 1) / time.Second)
		remaining := int64(max) - q.count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if q.count > int64(max) {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
