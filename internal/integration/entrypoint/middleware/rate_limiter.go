package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
)

const (
	// defaultMaxAttempts bounds login attempts per client per window.
	defaultMaxAttempts = 5
	// defaultWindow is the fixed counting window.
	defaultWindow = time.Minute
)

// clientWindow counts attempts for one client inside the current window.
type clientWindow struct {
	count     int
	startedAt time.Time
}

// RateLimiter throttles the login endpoint per client IP over a fixed
// window. Expired windows are pruned lazily as requests arrive.
type RateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*clientWindow
	maxAttempts int
	window      time.Duration
}

// NewRateLimiter creates a rate limiter with the default login limits.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(defaultMaxAttempts, defaultWindow)
}

// NewRateLimiterWithConfig creates a rate limiter with custom limits.
func NewRateLimiterWithConfig(maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:     make(map[string]*clientWindow),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Middleware returns a Gin handler that answers 429 once a client exhausts
// its attempts for the current window.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if client == "" {
			client = c.Request.RemoteAddr
		}

		if !rl.allow(client, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many attempts. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			return
		}

		c.Next()
	}
}

// allow counts one attempt for the client and reports whether it is within
// the limit.
func (rl *RateLimiter) allow(client string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.prune(now)

	w, ok := rl.windows[client]
	if !ok || now.Sub(w.startedAt) >= rl.window {
		rl.windows[client] = &clientWindow{count: 1, startedAt: now}
		return true
	}

	w.count++
	return w.count <= rl.maxAttempts
}

// prune drops windows that have already expired. Called with the lock held.
func (rl *RateLimiter) prune(now time.Time) {
	for client, w := range rl.windows {
		if now.Sub(w.startedAt) >= rl.window {
			delete(rl.windows, client)
		}
	}
}
