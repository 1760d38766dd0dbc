package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed window counter per key.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		allowed, remaining, retryAfter := rl.take(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			Abort(c, apperr.New(http.StatusTooManyRequests, "Too many requests from this IP, please try again in an hour!"))
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) take(key string) (allowed bool, remaining, retryAfter int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok || now.After(b.windowEnd) {
		// drop expired buckets so the map does not grow without bound
		for k, v := range rl.clients {
			if now.After(v.windowEnd) {
				delete(rl.clients, k)
			}
		}
		rl.clients[key] = &clientBucket{count: 1, windowEnd: now.Add(rl.window)}
		return true, rl.limit - 1, 0
	}

	if b.count >= rl.limit {
		return false, 0, max(int(b.windowEnd.Sub(now).Seconds()), 0)
	}

	b.count++
	return true, rl.limit - b.count, 0
}

func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}

	return ip
}
