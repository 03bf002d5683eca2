package middleware

import (
	"strconv"
	"sync"

	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller. State is in-memory and
// resets on process restart; that is acceptable for this limiter, it is
// not a correctness-critical component.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler keys the limit by user ID when authenticated, client IP
// otherwise. Must run after AuthMiddleware on authenticated routes to
// pick up the user key.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if p, ok := Principal(c); ok {
			key = "u:" + strconv.FormatUint(uint64(p.UserID), 10)
		}
		if !rl.getLimiter(key).Allow() {
			return utils.Error(c, fiber.StatusTooManyRequests,
				"ERR_RATE_LIMITED", "too many requests", nil)
		}
		return c.Next()
	}
}
