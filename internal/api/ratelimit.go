package api

import (
	"fmt"
	"time"

	"gradesheet/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// rateLimiter counts requests per client in fixed windows. Counters expire
// with their window.
type rateLimiter struct {
	limit  int
	window time.Duration
	hits   *cache.Cache
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   cache.New(window, 2*window),
	}
}

// allow records one request for key and reports whether it is within the limit
func (l *rateLimiter) allow(key string) bool {
	if err := l.hits.Add(key, 1, l.window); err == nil {
		return true
	}
	n, err := l.hits.IncrementInt(key, 1)
	if err != nil {
		// window expired between Add and IncrementInt
		l.hits.Set(key, 1, l.window)
		return true
	}
	return n <= l.limit
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		if !s.limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(s.limiter.window.Seconds())))
			s.fail(c, "rateLimit", errors.RateLimited("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
