package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harbinger-games/harbinger/internal/infrastructure/ratelimit"
	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

// PlayerRateLimiter limits requests per authenticated player. Requests pass
// through when the limiter backend fails.
type PlayerRateLimiter struct {
	limiter ratelimit.RateLimiter
	scope   string
	limit   int
	logger  logger.Interface
}

// NewPlayerRateLimiter allows limit requests per minute per player within scope.
// A limit of zero or less disables the check.
func NewPlayerRateLimiter(limiter ratelimit.RateLimiter, scope string, limit int, logger logger.Interface) *PlayerRateLimiter {
	return &PlayerRateLimiter{
		limiter: limiter,
		scope:   scope,
		limit:   limit,
		logger:  logger,
	}
}

// Limit must run after RequireAuth.
func (rl *PlayerRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		playerID, ok := PlayerIDFromContext(c)
		if !ok {
			c.Next()
			return
		}

		key := rl.scope + ":" + playerID
		ctx := c.Request.Context()

		allowed, err := rl.limiter.Allow(ctx, key, ratelimit.RateLimitConfig{RequestsPerMinute: rl.limit})
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request",
				"scope", rl.scope,
				"player_id", playerID,
				"error", err,
			)
			c.Next()
			return
		}

		if !allowed {
			rl.logger.Infow("rate limit exceeded",
				"scope", rl.scope,
				"player_id", playerID,
				"limit", rl.limit,
			)
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		if remaining, err := rl.limiter.GetRemaining(ctx, key, time.Minute, rl.limit); err == nil {
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		}

		c.Next()
	}
}
