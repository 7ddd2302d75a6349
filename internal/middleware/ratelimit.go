package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// RateLimiter implements per-client rate limiting with automatic cleanup
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows reqsPerWindow requests per window for each key,
// refilled evenly across the window.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window / time.Duration(reqsPerWindow)),
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
	go rl.startCleanup(10 * time.Minute)
	return rl
}

// Allow checks if a request for the given key is allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-time.Hour))
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup drops limiters not used since threshold.
func (rl *RateLimiter) cleanup(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, key)
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}

// RateLimit rejects requests from a client IP once its budget is spent.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RecordRateLimitHit(c.FullPath())
			log.WithField("client_ip", c.ClientIP()).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.NewAPIError(models.ErrTooManyRequests,
				"Request was throttled."))
			return
		}
		c.Next()
	}
}
