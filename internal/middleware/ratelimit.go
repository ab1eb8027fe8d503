package middleware

import (
	"net/http"

	"forkful/internal/services"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles per client IP, used on the credential endpoints.
func RateLimit(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := limiter.GetLimiter(c.ClientIP())
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}

		c.Next()
	}
}
