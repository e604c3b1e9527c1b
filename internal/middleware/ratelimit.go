package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/cache"
	"github.com/gin-gonic/gin"
)

// Per-action request ceilings within a fixed window.
var rateLimits = map[string]struct {
	Limit  int64
	Window time.Duration
}{
	"submit":   {Limit: 20, Window: time.Hour},
	"track":    {Limit: 100, Window: time.Hour},
	"purchase": {Limit: 30, Window: time.Hour},
	"default":  {Limit: 1000, Window: time.Hour},
}

// RateLimit enforces a fixed-window counter per client IP and action,
// backed by redis. Fail-open: with no cache, or on a cache error, the
// request proceeds.
func RateLimit(c *cache.RedisCache, action string) gin.HandlerFunc {
	cfg, ok := rateLimits[action]
	if !ok {
		cfg = rateLimits["default"]
	}

	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}

		key := fmt.Sprintf("rate:%s:%s", ctx.ClientIP(), action)
		count, err := c.Incr(ctx.Request.Context(), key, cfg.Window)
		if err != nil {
			log.Printf("Warning: rate limit check failed: %v", err)
			ctx.Next()
			return
		}

		if count > cfg.Limit {
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
