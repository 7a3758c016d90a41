package middleware

import (
	"context"
	"net/http"
	"strconv"

	"jobfair-live/internal/redis"
	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// Limiter is the slice of redis.RateLimiter the middleware uses.
type Limiter interface {
	AllowCall(ctx context.Context, userID string) (*redis.RateLimitResult, error)
	AllowChat(ctx context.Context, userID string) (*redis.RateLimitResult, error)
}

// CallRateLimitMiddleware limits call creation and interpreter invites.
// Should be applied after auth middleware.
func CallRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return rateLimit(limiter.AllowCall, "call rate limit exceeded")
}

// ChatRateLimitMiddleware limits in-call chat messages.
func ChatRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return rateLimit(limiter.AllowChat, "message rate limit exceeded")
}

func rateLimit(allow func(context.Context, string) (*redis.RateLimitResult, error), message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := services.IdentityFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		result, err := allow(c.Request.Context(), identity.UserID.String())
		if err != nil {
			// a limiter outage must not take the call flow down with it
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(message, "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
