package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/infrastructure/ratelimit"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
)

// RateLimit throttles requests per client IP
func RateLimit(limiter *ratelimit.Keyed) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey throttles requests per key. Rejected requests get a 429
// envelope and a Retry-After header in whole seconds.
func RateLimitByKey(limiter *ratelimit.Keyed, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		ok, wait := limiter.Reserve(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		if !ok {
			SetRetryAfter(c, wait)
			dto.TooManyRequests(c, "Too many requests. Please try again later.",
				dto.ErrorInfo{Code: dto.ErrCodeRateLimited, RequestID: GetRequestID(c)})
			return
		}
		c.Next()
	}
}

// SetRetryAfter writes the Retry-After header, rounding up to at least one second
func SetRetryAfter(c *gin.Context, wait time.Duration) {
	if wait <= 0 {
		return
	}
	secs := int(math.Ceil(wait.Seconds()))
	c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
}
