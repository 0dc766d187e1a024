package http

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/steveyiyo/tutor-relay/internal/observe"
)

const maxTrackedClients = 10000

type window struct {
	count int
	reset time.Time
}

// rateLimiter is a fixed-window counter per client IP. Windows expire from
// the cache on their own once they end.
type rateLimiter struct {
	mu      sync.Mutex
	windows *expirable.LRU[string, *window]
	size    time.Duration
	max     int
	metrics *observe.Metrics
	now     func() time.Time
}

func newRateLimiter(size time.Duration, limit int, m *observe.Metrics) *rateLimiter {
	return &rateLimiter{
		windows: expirable.NewLRU[string, *window](maxTrackedClients, nil, size),
		size:    size,
		max:     limit,
		metrics: m,
		now:     time.Now,
	}
}

// take counts one request for key and reports whether it is allowed along
// with the remaining budget and time until the window resets.
func (l *rateLimiter) take(key string) (bool, int, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(key)
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.size)}
		l.windows.Add(key, w)
	}
	w.count++
	return w.count <= l.max, max(0, l.max-w.count), w.reset.Sub(now)
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	retryAfter := int(math.Ceil(l.size.Seconds()))
	return func(c *gin.Context) {
		ok, remaining, reset := l.take(c.ClientIP())
		h := c.Writer.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.max))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
		if ok {
			c.Next()
			return
		}
		l.metrics.RecordRateLimited(c.Request.Context(), c.FullPath())
		h.Set("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":      "Too many requests from this IP, please try again later.",
			"retryAfter": retryAfter,
		})
	}
}
