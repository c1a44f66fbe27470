package middleware

import (
	"net/http"
	"time"

	"finanz-server/internal/cache"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	rateLimitMax    = 10
	rateLimitWindow = time.Minute
)

// RateLimit caps each client IP at rateLimitMax requests per window.
// With no cache backend every request passes.
func RateLimit(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.CountRequest(c.Request.Context(), c.ClientIP(), rateLimitWindow)
		if err != nil {
			// a broken counter must not take the API down
			c.Next()
			return
		}
		if count > rateLimitMax {
			util.Error(c, http.StatusTooManyRequests, util.CodeRateLimited, "rate limit exceeded, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
